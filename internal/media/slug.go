package media

import (
	"path/filepath"
	"strings"
)

// Slug returns the logical-asset key for path. Image renditions lose their
// size suffix so they group together; every other kind keys on the full
// file name, so unrelated static files never merge on a numeric suffix.
func Slug(path string, kind Kind) string {
	if kind == KindImage {
		return strings.ToLower(sizeSuffix.ReplaceAllString(Stem(path), ""))
	}
	return strings.ToLower(filepath.Base(path))
}
