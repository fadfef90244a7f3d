package catalog

import (
	"fmt"
	"os"

	"github.com/AnyUserName/mediacanon/internal/media"
)

// Validate checks c against the files under baseDir (the directory holding
// catalog.json) and returns one message per problem found.
func Validate(c *Catalog, baseDir string) []string {
	var errs []string

	if c.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported catalog version: %d", c.Version))
	}

	seenPaths := map[string]bool{}
	seenClusters := map[string]bool{}
	for i, e := range c.Entries {
		switch media.Kind(e.Kind) {
		case media.KindImage, media.KindVector, media.KindStatic:
		default:
			errs = append(errs, fmt.Sprintf("entry[%d]: unknown kind %q", i, e.Kind))
		}
		if e.Slug == "" {
			errs = append(errs, fmt.Sprintf("entry[%d]: missing slug", i))
		}
		if e.Members < 1 {
			errs = append(errs, fmt.Sprintf("entry[%d]: invalid member count %d", i, e.Members))
		}
		if e.Hash == "" {
			errs = append(errs, fmt.Sprintf("entry[%d]: missing hash", i))
		}

		cluster := e.Kind + "/" + e.Slug
		if seenClusters[cluster] {
			errs = append(errs, fmt.Sprintf("entry[%d]: second representative for %s", i, cluster))
		}
		seenClusters[cluster] = true

		if e.Path == "" {
			errs = append(errs, fmt.Sprintf("entry[%d]: missing path", i))
			continue
		}
		if seenPaths[e.Path] {
			errs = append(errs, fmt.Sprintf("entry[%d]: duplicate path %q", i, e.Path))
		}
		seenPaths[e.Path] = true

		info, err := os.Stat(Resolve(baseDir, e.Path))
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry[%d]: file not found: %s", i, e.Path))
		} else if info.Size() != e.Size {
			errs = append(errs, fmt.Sprintf("entry[%d]: size mismatch: catalog=%d, disk=%d", i, e.Size, info.Size()))
		}

		if e.Thumb != "" {
			if _, err := os.Stat(Resolve(baseDir, e.Thumb)); err != nil {
				errs = append(errs, fmt.Sprintf("entry[%d]: thumbnail not found: %s", i, e.Thumb))
			}
		}
	}

	if c.Stats.Entries != len(c.Entries) {
		errs = append(errs, fmt.Sprintf("stats.entries mismatch: %d != %d", c.Stats.Entries, len(c.Entries)))
	}
	return errs
}
