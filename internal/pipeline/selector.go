package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AnyUserName/mediacanon/internal/config"
	"github.com/AnyUserName/mediacanon/internal/media"
	"github.com/AnyUserName/mediacanon/internal/tools"
)

// Outcome records what canonicalization did for one cluster.
type Outcome int

const (
	OutcomeNone           Outcome = iota // not an image: kept as is
	OutcomeCanonical                     // best file already has the canonical encoding
	OutcomeReused                        // canonical sibling existed from an earlier run
	OutcomeConverted                     // canonical sibling created in this run
	OutcomeConvertFailed                 // converter failed, original kept
	OutcomeConvertSkipped                // no converter available, original kept
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCanonical:
		return "canonical"
	case OutcomeReused:
		return "reused"
	case OutcomeConverted:
		return "converted"
	case OutcomeConvertFailed:
		return "convert-failed"
	case OutcomeConvertSkipped:
		return "convert-skipped"
	default:
		return "none"
	}
}

// Representative is the file chosen to stand for a cluster.
type Representative struct {
	Path    string
	Kind    media.Kind
	Slug    string
	Size    int64
	Width   int
	Height  int
	Members int // files in the cluster
	Outcome Outcome
}

// Converted reports whether the file was created by this run.
func (r Representative) Converted() bool { return r.Outcome == OutcomeConverted }

// candidate is a scored cluster member.
type candidate struct {
	file   AssetFile
	width  int
	height int
}

func (c candidate) area() int64 { return int64(c.width) * int64(c.height) }

// Selector picks one representative per cluster and materializes the
// canonical encoding for images.
type Selector struct {
	dims      *media.DimensionProber
	converter tools.Converter
	canonical config.Canonical
	logger    *log.Logger
}

// NewSelector creates a selector. A nil converter disables conversion.
func NewSelector(dims *media.DimensionProber, converter tools.Converter, canonical config.Canonical, logger *log.Logger) *Selector {
	if dims == nil {
		dims = media.NewDimensionProber(nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	canonical.Extension = strings.ToLower(strings.TrimPrefix(canonical.Extension, "."))
	return &Selector{dims: dims, converter: converter, canonical: canonical, logger: logger}
}

// Select returns the representative of c. It never modifies or removes a
// cluster member; at most one new file (the canonical sibling) is written.
func (s *Selector) Select(ctx context.Context, c *Cluster) Representative {
	ranked := s.rank(ctx, c)
	best := ranked[0]
	rep := Representative{
		Path:    best.file.Path,
		Kind:    c.Kind,
		Slug:    c.Slug,
		Size:    best.file.Size,
		Width:   best.width,
		Height:  best.height,
		Members: len(c.Files),
	}
	if c.Kind != media.KindImage {
		return rep
	}
	s.canonicalize(ctx, &rep)
	return rep
}

// rank scores the members of c, best first: pixel area, then byte size,
// then path so equal scores resolve the same way on every filesystem.
func (s *Selector) rank(ctx context.Context, c *Cluster) []candidate {
	ranked := make([]candidate, len(c.Files))
	for i, f := range c.Files {
		ranked[i] = candidate{file: f}
		if c.Kind == media.KindImage {
			ranked[i].width, ranked[i].height = s.dims.Dimensions(ctx, f.Path)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.area() != b.area() {
			return a.area() > b.area()
		}
		if a.file.Size != b.file.Size {
			return a.file.Size > b.file.Size
		}
		return a.file.Path < b.file.Path
	})
	return ranked
}

// CanonicalPath returns the sibling of path carrying the canonical extension.
func CanonicalPath(path, ext string) string {
	return filepath.Join(filepath.Dir(path), media.Stem(path)+"."+ext)
}

func (s *Selector) canonicalize(ctx context.Context, rep *Representative) {
	if strings.EqualFold(media.Ext(rep.Path), s.canonical.Extension) {
		rep.Outcome = OutcomeCanonical
		return
	}

	dst := CanonicalPath(rep.Path, s.canonical.Extension)
	if fi, err := os.Stat(dst); err == nil {
		rep.Path = dst
		rep.Size = fi.Size()
		rep.Outcome = OutcomeReused
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("cannot check canonical sibling, keeping original", "path", dst, "err", err)
		rep.Outcome = OutcomeConvertFailed
		return
	}

	if s.converter == nil || !s.converter.Available() {
		rep.Outcome = OutcomeConvertSkipped
		return
	}
	if err := s.converter.Convert(ctx, rep.Path, dst, s.canonical.Quality); err != nil {
		s.logger.Warn("convert failed, keeping original", "src", rep.Path, "err", err)
		rep.Outcome = OutcomeConvertFailed
		return
	}
	fi, err := os.Stat(dst)
	if err != nil {
		s.logger.Warn("converter produced no output, keeping original", "src", rep.Path, "dst", dst)
		rep.Outcome = OutcomeConvertFailed
		return
	}
	s.logger.Info("converted", "src", filepath.Base(rep.Path), "dst", filepath.Base(dst))
	rep.Path = dst
	rep.Size = fi.Size()
	rep.Outcome = OutcomeConverted
}
