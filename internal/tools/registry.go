package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/AnyUserName/mediacanon/internal/media"
)

// Options selects which backends a Registry wires up.
type Options struct {
	Identify     []string // identify command prefix
	Convert      []string // convert command prefix
	ProbeTimeout time.Duration
	Native       bool // add the pure-Go header prober after identify
}

// Registry holds the probing and conversion backends for one run and
// answers capability queries for the CLI boundary.
type Registry struct {
	magick *ImageMagick
	native bool
}

// NewRegistry creates a registry. Availability is checked lazily, once.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		magick: NewImageMagick(opts.Identify, opts.Convert, opts.ProbeTimeout),
		native: opts.Native,
	}
}

// FormatProbes returns the available format probes in priority order.
func (r *Registry) FormatProbes() []media.FormatProbe {
	var out []media.FormatProbe
	if r.magick.ProbeAvailable() {
		out = append(out, r.magick)
	}
	if r.native {
		out = append(out, Native{})
	}
	return out
}

// DimensionProbes returns the available dimension probes in priority order.
func (r *Registry) DimensionProbes() []media.DimensionProbe {
	var out []media.DimensionProbe
	if r.magick.ProbeAvailable() {
		out = append(out, r.magick)
	}
	if r.native {
		out = append(out, Native{})
	}
	return out
}

// Converter returns the converter, or nil when it is not installed.
func (r *Registry) Converter() Converter {
	if r.magick.Available() {
		return r.magick
	}
	return nil
}

// Available returns the names of the external commands found on PATH.
func (r *Registry) Available() []string {
	var out []string
	if r.magick.ProbeAvailable() {
		out = append(out, strings.Join(r.magick.IdentifyCmd, " "))
	}
	if r.magick.Available() {
		out = append(out, strings.Join(r.magick.ConvertCmd, " "))
	}
	return out
}

// Missing returns the names of the required external commands that are
// not on PATH. An empty result means full-fidelity operation.
func (r *Registry) Missing() []string {
	var out []string
	if !r.magick.ProbeAvailable() {
		out = append(out, strings.Join(r.magick.IdentifyCmd, " "))
	}
	if !r.magick.Available() {
		out = append(out, strings.Join(r.magick.ConvertCmd, " "))
	}
	return out
}

// String returns a summary of available tools.
func (r *Registry) String() string {
	avail := r.Available()
	if r.native {
		avail = append(avail, "native decoders")
	}
	if len(avail) == 0 {
		return "no tools available"
	}
	s := fmt.Sprintf("tools: %s", strings.Join(avail, ", "))
	if missing := r.Missing(); len(missing) > 0 {
		s += fmt.Sprintf(" (missing: %s)", strings.Join(missing, ", "))
	}
	return s
}
