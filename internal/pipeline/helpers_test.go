package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/mediacanon/internal/config"
	"github.com/AnyUserName/mediacanon/internal/media"
	"github.com/AnyUserName/mediacanon/internal/tools"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

// writeFile creates rel under root with n bytes of content.
func writeFile(t *testing.T, root, rel string, n int) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", n)), 0o644))
	return path
}

// fakeConverter writes a small file at dst and counts invocations.
type fakeConverter struct {
	mu      sync.Mutex
	calls   int
	fail    bool
	panics  bool
	written []string
}

func (f *fakeConverter) Name() string    { return "fake" }
func (f *fakeConverter) Available() bool { return true }

func (f *fakeConverter) Convert(_ context.Context, src, dst string, quality int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("converter exploded")
	}
	if f.fail {
		return errors.New("convert: exit status 1")
	}
	f.written = append(f.written, dst)
	return os.WriteFile(dst, []byte("converted"), 0o644)
}

// fakeDims answers dimension probes from a table keyed by base name.
type fakeDims map[string][2]int

func (fakeDims) Name() string { return "fake" }

func (f fakeDims) ProbeDimensions(_ context.Context, path string) (int, int, error) {
	if d, ok := f[filepath.Base(path)]; ok {
		return d[0], d[1], nil
	}
	return 0, 0, errors.New("no dimensions")
}

type rig struct {
	classifier *media.Classifier
	selector   *Selector
	converter  *fakeConverter
}

func newRig(dims fakeDims, conv *fakeConverter) *rig {
	logger := quietLogger()
	var probes []media.DimensionProbe
	if dims != nil {
		probes = append(probes, dims)
	}
	r := &rig{
		classifier: media.NewClassifier(media.DefaultFormatSets(), nil, logger),
		converter:  conv,
	}
	var c tools.Converter
	if conv != nil {
		c = conv
	}
	r.selector = NewSelector(media.NewDimensionProber(probes, logger), c, config.Profile("webp"), logger)
	return r
}

func (r *rig) run(t *testing.T, root string, workers int) *Result {
	t.Helper()
	p := New(Config{Root: root, Workers: workers, Collect: CollectOptions{ProgressEvery: 2}}, r.classifier, r.selector, quietLogger())
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	return res
}

type pathKind struct {
	Path string
	Kind media.Kind
}

func pairs(res *Result) []pathKind {
	out := make([]pathKind, len(res.Representatives))
	for i, r := range res.Representatives {
		out[i] = pathKind{r.Path, r.Kind}
	}
	return out
}
