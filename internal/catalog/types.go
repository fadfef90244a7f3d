package catalog

// Catalog is the top-level output of a mediacanon build.
type Catalog struct {
	Version     int     `json:"version"`
	GeneratedAt string  `json:"generated_at"`
	Root        string  `json:"root"`
	Profile     string  `json:"profile"`
	Entries     []Entry `json:"entries"`
	Stats       Stats   `json:"stats"`
}

// Entry describes one representative: the single file that stands for a
// logical asset.
type Entry struct {
	Path      string `json:"path"`          // relative to the catalog directory, slash separated
	Abs       string `json:"abs,omitempty"` // absolute path at build time
	Kind      string `json:"kind"`          // "image", "vector", "static"
	Slug      string `json:"slug"`
	Size      int64  `json:"size"` // bytes on disk
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Members   int    `json:"members"` // renditions in the cluster
	Outcome   string `json:"outcome"`
	Converted bool   `json:"converted"`
	Hash      string `json:"hash"`            // first 16 hex chars of xxhash64
	Thumb     string `json:"thumb,omitempty"` // relative to the catalog directory
}

// Stats aggregates build metrics.
type Stats struct {
	FilesScanned   int      `json:"files_scanned"`
	Entries        int      `json:"entries"`
	Images         int      `json:"images"`
	Vectors        int      `json:"vectors"`
	Statics        int      `json:"statics"`
	Converted      int      `json:"converted"`
	TotalBytes     int64    `json:"total_bytes"`
	LearnedFormats []string `json:"learned_formats,omitempty"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1

// File names written into the output directory.
const (
	FileName    = "catalog.json"
	GalleryName = "gallery.html"
	ThumbDir    = "thumbs"
)
