// Package media classifies asset files, reads their pixel dimensions and
// derives the slug that groups renditions of one logical asset.
package media

import (
	"path/filepath"
	"strings"
)

// Kind is the media kind of an asset file.
type Kind string

const (
	KindImage  Kind = "image"
	KindVector Kind = "vector"
	KindStatic Kind = "static" // catch-all for anything unrecognized
)

// FormatSets lists the lower-cased extensions / format identifiers
// recognized for each kind.
type FormatSets struct {
	Raster []string `toml:"raster"`
	Vector []string `toml:"vector"`
	Static []string `toml:"static"`
}

// DefaultFormatSets returns the built-in extension tables.
func DefaultFormatSets() FormatSets {
	return FormatSets{
		Raster: []string{"jpeg", "jpg", "png", "gif", "bmp", "tiff", "webp", "avif"},
		Vector: []string{"svg"},
		Static: []string{
			"css", "js", "html", "htm", "php", "log", "txt", "md", "json",
			"pdf", "mp4", "mp3", "woff", "woff2", "ttf", "otf", "eot",
		},
	}
}

// WithRaster returns a copy of s whose raster list includes ext.
func (s FormatSets) WithRaster(ext string) FormatSets {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, r := range s.Raster {
		if strings.EqualFold(strings.TrimPrefix(r, "."), ext) {
			return s
		}
	}
	s.Raster = append(append([]string{}, s.Raster...), ext)
	return s
}

// Ext returns the lower-cased extension of path without the leading dot.
// A leading dot belongs to the name, so ".htaccess" has no extension.
func Ext(path string) string {
	_, ext := splitName(filepath.Base(path))
	return strings.ToLower(ext)
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	stem, _ := splitName(filepath.Base(path))
	return stem
}

func splitName(base string) (stem, ext string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return base, ""
	}
	return base[:i], base[i+1:]
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimPrefix(it, "."))] = true
	}
	return set
}
