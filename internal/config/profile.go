package config

import "strings"

// Canonical is the preferred output encoding for image representatives.
type Canonical struct {
	Extension string `toml:"extension"` // without dot, e.g. "webp"
	Quality   int    `toml:"quality"`   // converter quality 1-100
}

// Built-in profiles.
var profiles = map[string]Canonical{
	"webp":         {Extension: "webp", Quality: 95},
	"webp-compact": {Extension: "webp", Quality: 80},
	"jpeg":         {Extension: "jpg", Quality: 90},
	"avif":         {Extension: "avif", Quality: 60},
}

// DefaultProfile is used when no profile is requested.
const DefaultProfile = "webp"

// Profile returns the canonical encoding of a named profile. Falls back to
// the webp profile if unknown.
func Profile(name string) Canonical {
	if c, ok := profiles[strings.ToLower(name)]; ok {
		return c
	}
	return profiles[DefaultProfile]
}

// ProfileNames returns the built-in profile names in display order.
func ProfileNames() []string {
	return []string{"webp", "webp-compact", "jpeg", "avif"}
}
