// Package config holds run settings: built-in canonical-encoding profiles
// overlaid with an optional TOML file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/AnyUserName/mediacanon/internal/media"
	"github.com/AnyUserName/mediacanon/internal/tools"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of run settings.
type Config struct {
	Profile   string           `toml:"profile"`
	Canonical Canonical        `toml:"canonical"`
	Tools     Tools            `toml:"tools"`
	Scan      Scan             `toml:"scan"`
	Formats   media.FormatSets `toml:"formats"`
	Workers   int              `toml:"workers"`
}

// Tools configures the external programs.
type Tools struct {
	Identify     []string `toml:"identify"`
	Convert      []string `toml:"convert"`
	ProbeTimeout string   `toml:"probe_timeout"` // Go duration, e.g. "5s"
	Native       bool     `toml:"native"`
}

// Scan configures the directory walk.
type Scan struct {
	ProgressEvery int  `toml:"progress_every"`
	SkipHidden    bool `toml:"skip_hidden"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Profile:   DefaultProfile,
		Canonical: Profile(DefaultProfile),
		Tools: Tools{
			Identify:     []string{"identify"},
			Convert:      []string{"convert"},
			ProbeTimeout: tools.DefaultProbeTimeout.String(),
		},
		Scan:    Scan{ProgressEvery: 500},
		Formats: media.DefaultFormatSets(),
		Workers: 1,
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values; a profile named in the file supplies the canonical
// encoding unless [canonical] overrides it. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var file Config
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	if md.IsDefined("profile") {
		cfg.ApplyProfile(file.Profile)
	}
	if md.IsDefined("canonical", "extension") {
		cfg.Canonical.Extension = file.Canonical.Extension
	}
	if md.IsDefined("canonical", "quality") {
		cfg.Canonical.Quality = file.Canonical.Quality
	}
	if md.IsDefined("tools", "identify") {
		cfg.Tools.Identify = file.Tools.Identify
	}
	if md.IsDefined("tools", "convert") {
		cfg.Tools.Convert = file.Tools.Convert
	}
	if md.IsDefined("tools", "probe_timeout") {
		cfg.Tools.ProbeTimeout = file.Tools.ProbeTimeout
	}
	if md.IsDefined("tools", "native") {
		cfg.Tools.Native = file.Tools.Native
	}
	if md.IsDefined("scan", "progress_every") {
		cfg.Scan.ProgressEvery = file.Scan.ProgressEvery
	}
	if md.IsDefined("scan", "skip_hidden") {
		cfg.Scan.SkipHidden = file.Scan.SkipHidden
	}
	if md.IsDefined("formats", "raster") {
		cfg.Formats.Raster = file.Formats.Raster
	}
	if md.IsDefined("formats", "vector") {
		cfg.Formats.Vector = file.Formats.Vector
	}
	if md.IsDefined("formats", "static") {
		cfg.Formats.Static = file.Formats.Static
	}
	if md.IsDefined("workers") {
		cfg.Workers = file.Workers
	}
	return cfg, cfg.Validate()
}

// ApplyProfile switches to a named profile, replacing the canonical encoding.
func (c *Config) ApplyProfile(name string) {
	c.Profile = name
	c.Canonical = Profile(name)
}

// Timeout returns the parsed probe timeout.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Tools.ProbeTimeout)
	if err != nil || d <= 0 {
		return tools.DefaultProbeTimeout
	}
	return d
}

// ToolOptions converts the tool settings for tools.NewRegistry.
func (c Config) ToolOptions() tools.Options {
	return tools.Options{
		Identify:     c.Tools.Identify,
		Convert:      c.Tools.Convert,
		ProbeTimeout: c.Timeout(),
		Native:       c.Tools.Native,
	}
}

// ClassifierFormats returns the format tables with the canonical extension
// counted as raster, so converted siblings cluster with their originals on
// the next run.
func (c Config) ClassifierFormats() media.FormatSets {
	return c.Formats.WithRaster(c.Canonical.Extension)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	ext := strings.TrimPrefix(c.Canonical.Extension, ".")
	switch {
	case ext == "" || strings.ContainsAny(ext, `/\`):
		return fmt.Errorf("%w: canonical extension %q", ErrInvalid, c.Canonical.Extension)
	case c.Canonical.Quality < 1 || c.Canonical.Quality > 100:
		return fmt.Errorf("%w: quality %d not in 1-100", ErrInvalid, c.Canonical.Quality)
	case len(c.Tools.Identify) == 0 || c.Tools.Identify[0] == "":
		return fmt.Errorf("%w: empty identify command", ErrInvalid)
	case len(c.Tools.Convert) == 0 || c.Tools.Convert[0] == "":
		return fmt.Errorf("%w: empty convert command", ErrInvalid)
	case c.Scan.ProgressEvery < 0:
		return fmt.Errorf("%w: progress_every %d", ErrInvalid, c.Scan.ProgressEvery)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if _, err := time.ParseDuration(c.Tools.ProbeTimeout); err != nil {
		return fmt.Errorf("%w: probe_timeout: %v", ErrInvalid, err)
	}
	return nil
}
