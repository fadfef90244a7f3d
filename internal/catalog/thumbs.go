package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoder for imaging.Open

	"github.com/AnyUserName/mediacanon/internal/media"
)

// Thumbnailer writes small JPEG previews of image entries. Thumbnails are
// named by the content hash of their source, so unchanged files reuse the
// thumbnail from an earlier run.
type Thumbnailer struct {
	Dir     string // absolute directory receiving <hash>.jpg
	MaxSide int    // longest edge in pixels
	Quality int    // JPEG quality 1-100
}

// ThumbStats counts what Apply did.
type ThumbStats struct {
	Made    int
	Reused  int
	Failed  int
	Skipped int // non-image entries
}

// NewThumbnailer returns a thumbnailer with 320px / q80 previews.
func NewThumbnailer(dir string) *Thumbnailer {
	return &Thumbnailer{Dir: dir, MaxSide: 320, Quality: 80}
}

// Apply generates thumbnails for every image entry of c and records their
// location relative to baseDir. Undecodable images are logged and left
// without a thumbnail.
func (t *Thumbnailer) Apply(ctx context.Context, c *Catalog, baseDir string, logger *log.Logger) (ThumbStats, error) {
	var st ThumbStats
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return st, fmt.Errorf("create thumbnail dir: %w", err)
	}
	for i := range c.Entries {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		e := &c.Entries[i]
		if media.Kind(e.Kind) != media.KindImage || e.Hash == "" {
			st.Skipped++
			continue
		}
		dst, made, err := t.Make(Resolve(baseDir, e.Path), e.Hash)
		if err != nil {
			logger.Warn("thumbnail failed", "path", e.Path, "err", err)
			st.Failed++
			continue
		}
		if made {
			st.Made++
		} else {
			st.Reused++
		}
		e.Thumb = RelPath(baseDir, dst)
	}
	logger.Debug("thumbnails done", "made", st.Made, "reused", st.Reused, "failed", st.Failed)
	return st, nil
}

// Make writes the thumbnail for src unless <hash>.jpg already exists. It
// returns the thumbnail path and whether it was created.
func (t *Thumbnailer) Make(src, hash string) (string, bool, error) {
	dst := filepath.Join(t.Dir, hash+".jpg")
	if _, err := os.Stat(dst); err == nil {
		return dst, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", false, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > t.MaxSide || b.Dy() > t.MaxSide {
		img = imaging.Fit(img, t.MaxSide, t.MaxSide, imaging.Lanczos)
	}

	tmp := filepath.Join(t.Dir, hash+".tmp.jpg")
	if err := imaging.Save(img, tmp, imaging.JPEGQuality(t.Quality)); err != nil {
		os.Remove(tmp)
		return "", false, fmt.Errorf("encode: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", false, err
	}
	return dst, true, nil
}
