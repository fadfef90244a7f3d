package catalog

import (
	"fmt"
	"html/template"
	"os"
	"path"
)

// placeholderIcon is shown for entries a browser cannot render as an image.
const placeholderIcon = template.URL("data:image/svg+xml," +
	"<svg xmlns='http://www.w3.org/2000/svg' width='160' height='160' viewBox='0 0 160 160'>" +
	"<rect width='160' height='160' fill='%23eee'/><path d='M40 40h80v80H40z' fill='%23ccc'/></svg>")

var galleryTmpl = template.Must(template.New("gallery").Parse(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.Title}}</title><style>
body{margin:0;font-family:system-ui,sans-serif;background:#fafafa}
.grid{display:grid;gap:.5rem;padding:.5rem;grid-template-columns:repeat(auto-fill,minmax(200px,1fr))}
.grid a{display:block;border:1px solid #ddd;background:#fff;padding:.25rem;border-radius:6px;transition:box-shadow .2s}
.grid a:hover{box-shadow:0 0 8px rgba(0,0,0,.2)}
.grid img{width:100%;height:160px;object-fit:cover;display:block}
.caption{font-size:.75rem;text-align:center;padding:.25rem 0;color:#333;white-space:nowrap;text-overflow:ellipsis;overflow:hidden}
</style></head><body><div class="grid">
{{range .Items}}<a href="{{.Href}}" target="_blank" title="{{.Title}}"><img src="{{if .Icon}}{{$.Placeholder}}{{else}}{{.Src}}{{end}}" loading="lazy" alt="{{.Name}}" /><div class="caption">{{.Name}}</div></a>
{{end}}</div></body></html>
`))

type galleryItem struct {
	Href  string
	Src   string
	Icon  bool
	Name  string
	Title string
}

type galleryPage struct {
	Title       string
	Placeholder template.URL
	Items       []galleryItem
}

// WriteHTML renders a gallery page for c at dest. Links are relative to the
// catalog directory, so dest must live next to catalog.json. Static entries
// get a placeholder icon; image entries prefer their thumbnail.
func WriteHTML(c *Catalog, dest string) error {
	page := galleryPage{Title: "Gallery", Placeholder: placeholderIcon}
	for _, e := range c.Entries {
		it := galleryItem{
			Href:  e.Path,
			Src:   e.Path,
			Icon:  e.Kind == "static",
			Name:  path.Base(e.Path),
			Title: caption(e),
		}
		if e.Thumb != "" {
			it.Src = e.Thumb
		}
		page.Items = append(page.Items, it)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create gallery: %w", err)
	}
	if err := galleryTmpl.Execute(f, page); err != nil {
		f.Close()
		return fmt.Errorf("render gallery: %w", err)
	}
	return f.Close()
}

func caption(e Entry) string {
	s := fmt.Sprintf("%s (%s, %d renditions)", e.Slug, e.Kind, e.Members)
	if e.Width > 0 && e.Height > 0 {
		s += fmt.Sprintf(" %dx%d", e.Width, e.Height)
	}
	return s
}
