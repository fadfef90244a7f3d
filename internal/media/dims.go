package media

import (
	"context"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
)

// sizeSuffix matches the rendition suffix a content pipeline appends to
// image stems: "-1200x800" or "-600x400@2x".
var sizeSuffix = regexp.MustCompile(`(?i)-(\d+)x(\d+)(@2x)?$`)

// MaxSide bounds a believable width or height. Larger values from a
// filename or a probe are ignored so pixel areas stay within int64.
const MaxSide = 1 << 20

// DimensionProbe reads the pixel dimensions of a raster file.
type DimensionProbe interface {
	Name() string
	ProbeDimensions(ctx context.Context, path string) (width, height int, err error)
}

// ParseSizeSuffix extracts the width and height encoded in a stem such as
// "villa-1200x800" or "villa-600x400@2x".
func ParseSizeSuffix(stem string) (width, height int, ok bool) {
	m := sizeSuffix.FindStringSubmatch(stem)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w > MaxSide || h > MaxSide {
		return 0, 0, false
	}
	return w, h, true
}

// DimensionProber resolves raster dimensions: filename suffix first, then
// each probe in order, then (0, 0).
type DimensionProber struct {
	probes []DimensionProbe
	logger *log.Logger
}

// NewDimensionProber returns a prober trying probes in order. Nil probes are
// ignored; with no probes only the filename suffix is consulted.
func NewDimensionProber(probes []DimensionProbe, logger *log.Logger) *DimensionProber {
	if logger == nil {
		logger = log.Default()
	}
	var ps []DimensionProbe
	for _, p := range probes {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &DimensionProber{probes: ps, logger: logger}
}

// Dimensions returns the width and height of the raster at path, or (0, 0)
// when they cannot be determined.
func (d *DimensionProber) Dimensions(ctx context.Context, path string) (width, height int) {
	if w, h, ok := ParseSizeSuffix(Stem(path)); ok {
		return w, h
	}
	for _, p := range d.probes {
		w, h, err := p.ProbeDimensions(ctx, path)
		if err != nil {
			d.logger.Debug("dimension probe failed", "probe", p.Name(), "path", path, "err", err)
			continue
		}
		if w < 0 || h < 0 || w > MaxSide || h > MaxSide {
			d.logger.Debug("dimension probe out of range", "probe", p.Name(), "path", path, "width", w, "height", h)
			continue
		}
		return w, h
	}
	return 0, 0
}
