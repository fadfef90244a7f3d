// Package catalog turns a pipeline result into the artifacts a consumer
// reads: a JSON catalog, a static HTML gallery and optional thumbnails.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/mediacanon/internal/hasher"
	"github.com/AnyUserName/mediacanon/internal/media"
	"github.com/AnyUserName/mediacanon/internal/pipeline"
)

// New creates an empty catalog with defaults.
func New(root, profileName string) *Catalog {
	return &Catalog{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Root:        root,
		Profile:     profileName,
		Entries:     []Entry{},
	}
}

// FromResult builds a catalog from res, in representative order. Entry
// paths are made relative to outDir, where the catalog will be written.
func FromResult(res *pipeline.Result, outDir, profileName string) (*Catalog, error) {
	c := New(res.Root, profileName)
	c.Entries = make([]Entry, 0, len(res.Representatives))
	for _, r := range res.Representatives {
		sum, err := hasher.FileHash(r.Path, hasher.DefaultLen)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", r.Slug, err)
		}
		c.Entries = append(c.Entries, Entry{
			Path:      RelPath(outDir, r.Path),
			Abs:       r.Path,
			Kind:      string(r.Kind),
			Slug:      r.Slug,
			Size:      r.Size,
			Width:     r.Width,
			Height:    r.Height,
			Members:   r.Members,
			Outcome:   r.Outcome.String(),
			Converted: r.Converted(),
			Hash:      sum,
		})
	}
	c.Stats.FilesScanned = res.Stats.FilesScanned
	c.Stats.LearnedFormats = res.Stats.LearnedFormats
	c.ComputeStats()
	return c, nil
}

// RelPath returns target relative to base with forward slashes. When no
// relative path exists (different volumes) the absolute path is used.
func RelPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// ComputeStats recalculates the entry-derived statistics.
func (c *Catalog) ComputeStats() {
	s := Stats{FilesScanned: c.Stats.FilesScanned, LearnedFormats: c.Stats.LearnedFormats}
	s.Entries = len(c.Entries)
	for _, e := range c.Entries {
		s.TotalBytes += e.Size
		if e.Converted {
			s.Converted++
		}
		switch media.Kind(e.Kind) {
		case media.KindImage:
			s.Images++
		case media.KindVector:
			s.Vectors++
		default:
			s.Statics++
		}
	}
	c.Stats = s
}

// WriteJSON serializes the catalog to a JSON file.
func WriteJSON(c *Catalog, path string) error {
	c.ComputeStats()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a catalog. Unknown fields are ignored.
func ReadJSON(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Resolve returns the on-disk location of a catalog-relative path.
func Resolve(baseDir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
