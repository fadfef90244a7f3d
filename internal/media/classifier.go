package media

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// FormatProbe reports a format identifier (e.g. "JPEG", "SVG") for a file
// by inspecting its contents. Implementations live in internal/tools.
type FormatProbe interface {
	Name() string
	ProbeFormat(ctx context.Context, path string) (string, error)
}

// Classifier decides the Kind of a file. It is a per-run session: format
// identifiers it could not place are learned into the static set so the
// warning for them is emitted once. Safe for concurrent use.
type Classifier struct {
	raster map[string]bool
	vector map[string]bool
	static map[string]bool
	probes []FormatProbe
	logger *log.Logger

	mu      sync.Mutex
	learned map[string]bool
}

// NewClassifier builds a classification session. Probes are tried in order
// for files whose extension is in none of the tables; nil probes are ignored.
func NewClassifier(sets FormatSets, probes []FormatProbe, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	var ps []FormatProbe
	for _, p := range probes {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Classifier{
		raster:  toSet(sets.Raster),
		vector:  toSet(sets.Vector),
		static:  toSet(sets.Static),
		probes:  ps,
		logger:  logger,
		learned: make(map[string]bool),
	}
}

// Classify returns the kind of the file at path. It never fails: anything
// that cannot be recognized is static.
func (c *Classifier) Classify(ctx context.Context, path string) Kind {
	ext := Ext(path)
	if kind, ok := c.lookup(ext); ok {
		return kind
	}

	id := ext
	for _, p := range c.probes {
		got, err := p.ProbeFormat(ctx, path)
		if err != nil {
			c.logger.Debug("format probe failed", "probe", p.Name(), "path", path, "err", err)
			continue
		}
		if got = normalizeFormat(got); got != "" {
			id = got
			break
		}
	}

	if kind, ok := c.lookup(id); ok {
		return kind
	}
	c.learn(id, path)
	return KindStatic
}

// IsRaster reports whether ext (without dot, any case) is a raster encoding.
func (c *Classifier) IsRaster(ext string) bool {
	return c.raster[strings.ToLower(ext)]
}

// Learned returns the unknown identifiers seen so far, sorted.
func (c *Classifier) Learned() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.learned))
	for id := range c.learned {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Classifier) lookup(id string) (Kind, bool) {
	switch {
	case id == "":
		return "", false
	case c.raster[id]:
		return KindImage, true
	case c.vector[id]:
		return KindVector, true
	case c.static[id]:
		return KindStatic, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.learned[id] {
		return KindStatic, true
	}
	return "", false
}

func (c *Classifier) learn(id, path string) {
	if id == "" {
		id = "<none>"
	}
	c.mu.Lock()
	seen := c.learned[id]
	c.learned[id] = true
	c.mu.Unlock()
	if !seen {
		c.logger.Warn("unknown format, treating as static file", "format", id, "file", path)
	}
}

// normalizeFormat keeps the first line of probe output, lower-cased.
// Multi-frame images make identify repeat the identifier per frame.
func normalizeFormat(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
