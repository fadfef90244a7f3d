package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/mediacanon/internal/config"
	"github.com/AnyUserName/mediacanon/internal/media"
)

func TestRun_PixelAreaDominatesByteSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2024/sunset-300x200.jpg", 40)
	writeFile(t, root, "2024/sunset-1920x1080.jpg", 900)
	writeFile(t, root, "2024/sunset.png", 1200)

	res := newRig(nil, nil).run(t, root, 1)
	require.Len(t, res.Representatives, 1)

	rep := res.Representatives[0]
	assert.Equal(t, filepath.Join(root, "2024", "sunset-1920x1080.jpg"), rep.Path)
	assert.Equal(t, media.KindImage, rep.Kind)
	assert.Equal(t, "sunset", rep.Slug)
	assert.Equal(t, 1920, rep.Width)
	assert.Equal(t, 1080, rep.Height)
	assert.Equal(t, 3, rep.Members)
	assert.Equal(t, OutcomeConvertSkipped, rep.Outcome)
	assert.Equal(t, 1, res.Stats.ConvertSkipped)
}

func TestRun_ConvertsToCanonicalSibling(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sunset-300x200.jpg", 40)
	writeFile(t, root, "sunset-1920x1080.jpg", 900)
	writeFile(t, root, "sunset.png", 1200)

	conv := &fakeConverter{}
	res := newRig(nil, conv).run(t, root, 1)

	require.Len(t, res.Representatives, 1)
	rep := res.Representatives[0]
	assert.Equal(t, filepath.Join(root, "sunset-1920x1080.webp"), rep.Path)
	assert.True(t, rep.Converted())
	assert.Equal(t, int64(len("converted")), rep.Size)
	assert.Equal(t, 1, conv.calls)
	assert.Equal(t, 1, res.Stats.Converted)

	// Originals untouched.
	for _, name := range []string{"sunset-300x200.jpg", "sunset-1920x1080.jpg", "sunset.png"} {
		_, err := os.Stat(filepath.Join(root, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/sunset-300x200.jpg", 40)
	writeFile(t, root, "a/sunset-1920x1080.jpg", 900)
	writeFile(t, root, "a/sunset.png", 1200)
	writeFile(t, root, "b/villa-1200x800.jpg", 500)
	writeFile(t, root, "b/villa-600x400@2x.jpg", 300)
	writeFile(t, root, "robots.txt", 50)
	writeFile(t, root, "logo.svg", 10)

	conv := &fakeConverter{}
	first := newRig(nil, conv).run(t, root, 1)
	require.Equal(t, 2, conv.calls)

	second := newRig(nil, conv).run(t, root, 1)
	assert.Equal(t, 2, conv.calls, "second run must not convert again")
	assert.Equal(t, pairs(first), pairs(second))
	assert.Equal(t, 0, second.Stats.Converted)
	assert.Equal(t, 2, second.Stats.Reused)
}

func TestRun_SortedAndOnePerCluster(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z/robots.txt", 50)
	writeFile(t, root, "a/robots.txt", 80)
	writeFile(t, root, "m/Robots.TXT", 10)
	writeFile(t, root, "pic-10x10.gif", 5)
	writeFile(t, root, "b/pic.webp", 7)
	writeFile(t, root, "notes.md", 3)
	writeFile(t, root, "icon-32x32.svg", 4)
	writeFile(t, root, "icon-64x64.svg", 4)

	res := newRig(nil, nil).run(t, root, 1)

	got := pairs(res)
	// The gif's size suffix gives it 100 px against the unprobed webp's 0.
	assert.Equal(t, []pathKind{
		{filepath.Join(root, "a", "robots.txt"), media.KindStatic},
		{filepath.Join(root, "icon-32x32.svg"), media.KindVector},
		{filepath.Join(root, "icon-64x64.svg"), media.KindVector},
		{filepath.Join(root, "notes.md"), media.KindStatic},
		{filepath.Join(root, "pic-10x10.gif"), media.KindImage},
	}, got)
	assert.Equal(t, 5, res.Stats.Clusters)
	assert.Equal(t, 8, res.Stats.FilesScanned)
}

func TestRun_ProbeUnavailableDegradesToByteSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "beach.png", 100)
	writeFile(t, root, "old/beach.jpg", 300)
	writeFile(t, root, "backup/beach.JPG", 200)

	res := newRig(nil, nil).run(t, root, 1)
	require.Len(t, res.Representatives, 1)
	rep := res.Representatives[0]
	assert.Equal(t, filepath.Join(root, "old", "beach.jpg"), rep.Path)
	assert.Zero(t, rep.Width)
	assert.Zero(t, rep.Height)
}

func TestRun_ProbedDimensionsWin(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "beach.png", 100)
	writeFile(t, root, "beach.jpg", 300)

	res := newRig(fakeDims{"beach.png": {4000, 3000}, "beach.jpg": {800, 600}}, nil).run(t, root, 1)
	require.Len(t, res.Representatives, 1)
	assert.Equal(t, filepath.Join(root, "beach.png"), res.Representatives[0].Path)
	assert.Equal(t, 4000, res.Representatives[0].Width)
}

func TestRun_ConvertFailureKeepsOriginal(t *testing.T) {
	root := t.TempDir()
	src := writeFile(t, root, "house-800x600.png", 100)

	conv := &fakeConverter{fail: true}
	res := newRig(nil, conv).run(t, root, 1)

	require.Len(t, res.Representatives, 1)
	assert.Equal(t, src, res.Representatives[0].Path)
	assert.Equal(t, OutcomeConvertFailed, res.Representatives[0].Outcome)
	assert.Equal(t, 1, res.Stats.ConvertFailed)
}

func TestRun_PanicFallsBackWithinCluster(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "house.png", 100)
	writeFile(t, root, "house.jpg", 200)
	writeFile(t, root, "robots.txt", 5)

	conv := &fakeConverter{panics: true}
	res := newRig(nil, conv).run(t, root, 1)

	require.Len(t, res.Representatives, 2)
	assert.Equal(t, filepath.Join(root, "house.jpg"), res.Representatives[0].Path)
	assert.Equal(t, filepath.Join(root, "robots.txt"), res.Representatives[1].Path)
}

// panicDims blows up while the selector is ranking.
type panicDims struct{}

func (panicDims) Name() string { return "panic" }

func (panicDims) ProbeDimensions(context.Context, string) (int, int, error) {
	panic("probe exploded")
}

func TestRun_PanicWhileRankingUsesLargestFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "house.png", 300)
	writeFile(t, root, "house.jpg", 300)
	writeFile(t, root, "house.gif", 20)

	logger := quietLogger()
	sel := NewSelector(media.NewDimensionProber([]media.DimensionProbe{panicDims{}}, logger), nil, config.Profile("webp"), logger)
	cls := media.NewClassifier(media.DefaultFormatSets(), nil, logger)
	res, err := New(Config{Root: root}, cls, sel, logger).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Representatives, 1)
	rep := res.Representatives[0]
	assert.Equal(t, filepath.Join(root, "house.jpg"), rep.Path, "equal sizes break on path")
	assert.Equal(t, 3, rep.Members)
	assert.Equal(t, OutcomeNone, rep.Outcome)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a", "b", "c", "d"} {
		writeFile(t, root, dir+"/photo-100x100.jpg", 10)
		writeFile(t, root, dir+"/photo-200x200.jpg", 20)
		writeFile(t, root, dir+"/"+dir+"-only.png", 30)
		writeFile(t, root, dir+"/readme.txt", len(dir))
	}

	seq := newRig(nil, nil).run(t, root, 1)
	par := newRig(nil, nil).run(t, root, 4)
	assert.Equal(t, pairs(seq), pairs(par))
	assert.Equal(t, seq.Stats, par.Stats)
}

func TestRun_MissingRoot(t *testing.T) {
	r := newRig(nil, nil)
	_, err := New(Config{Root: filepath.Join(t.TempDir(), "absent")}, r.classifier, r.selector, quietLogger()).Run(context.Background())
	assert.ErrorIs(t, err, ErrRootNotDir)
}

func TestRun_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)
	r := newRig(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Root: root}, r.classifier, r.selector, quietLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
