// Package pipeline turns a directory tree into one representative file per
// logical asset: Collect groups files into clusters, Selector picks and
// canonicalizes the best member of each, and Pipeline.Run ties both together.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/mediacanon/internal/media"
)

// Config holds all parameters for a pipeline run.
type Config struct {
	Root    string
	Workers int // clusters selected concurrently; <= 1 runs sequentially
	Collect CollectOptions
}

// Stats aggregates run metrics.
type Stats struct {
	FilesScanned   int
	FilesSkipped   int
	Clusters       int
	Images         int
	Vectors        int
	Statics        int
	Converted      int
	Reused         int
	ConvertFailed  int
	ConvertSkipped int
	LearnedFormats []string
}

// Result is the output of a run: representatives sorted by path.
type Result struct {
	Root            string
	Representatives []Representative
	Stats           Stats
}

// Pipeline orchestrates a scan.
type Pipeline struct {
	cfg        Config
	classifier *media.Classifier
	selector   *Selector
	logger     *log.Logger
}

// New creates a configured pipeline.
func New(cfg Config, classifier *media.Classifier, selector *Selector, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{cfg: cfg, classifier: classifier, selector: selector, logger: logger}
}

// Run collects clusters under the root, selects one representative per
// cluster and returns them sorted by path.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	root, err := filepath.Abs(p.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	set, scan, err := Collect(ctx, root, p.classifier, p.cfg.Collect, p.logger)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	clusters := set.Clusters()
	reps := make([]Representative, len(clusters))
	if p.cfg.Workers <= 1 {
		for i, c := range clusters {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			reps[i] = p.selectOne(ctx, c)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Workers)
		for i, c := range clusters {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				reps[i] = p.selectOne(gctx, c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	sort.Slice(reps, func(i, j int) bool { return reps[i].Path < reps[j].Path })

	res := &Result{Root: root, Representatives: reps}
	res.Stats = summarize(reps, scan)
	res.Stats.LearnedFormats = p.classifier.Learned()
	p.logger.Info("selection complete", "representatives", len(reps), "converted", res.Stats.Converted)
	return res, nil
}

// selectOne runs the selector, containing a panic to its cluster: the
// cluster still gets a representative, ranked by size and path only.
func (p *Pipeline) selectOne(ctx context.Context, c *Cluster) (rep Representative) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("selection panicked, using size-ranked fallback", "slug", c.Slug, "panic", r)
			rep = fallback(c)
		}
	}()
	p.logger.Debug("selecting", "slug", c.Slug, "kind", c.Kind, "files", len(c.Files))
	return p.selector.Select(ctx, c)
}

func fallback(c *Cluster) Representative {
	best := c.Files[0]
	for _, f := range c.Files[1:] {
		if f.Size > best.Size || (f.Size == best.Size && f.Path < best.Path) {
			best = f
		}
	}
	return Representative{Path: best.Path, Kind: c.Kind, Slug: c.Slug, Size: best.Size, Members: len(c.Files)}
}

func summarize(reps []Representative, scan ScanStats) Stats {
	s := Stats{
		FilesScanned: scan.Files,
		FilesSkipped: scan.Skipped,
		Clusters:     len(reps),
	}
	for _, r := range reps {
		switch r.Kind {
		case media.KindImage:
			s.Images++
		case media.KindVector:
			s.Vectors++
		default:
			s.Statics++
		}
		switch r.Outcome {
		case OutcomeConverted:
			s.Converted++
		case OutcomeReused:
			s.Reused++
		case OutcomeConvertFailed:
			s.ConvertFailed++
		case OutcomeConvertSkipped:
			s.ConvertSkipped++
		}
	}
	return s
}
