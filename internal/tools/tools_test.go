package tools

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	w, h, err := ParseDimensions("1920 1080\n")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h, err = ParseDimensions("64 32\n64 32\n")
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	for _, bad := range []string{"", "1920", "a b", "1 2 3", "-1 5"} {
		_, _, err := ParseDimensions(bad)
		assert.ErrorIs(t, err, ErrBadOutput, bad)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.bin")
	writePNG(t, path, 37, 21)

	format, err := Native{}.ProbeFormat(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	w, h, err := Native{}.ProbeDimensions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 37, w)
	assert.Equal(t, 21, h)

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	_, err = Native{}.ProbeFormat(context.Background(), text)
	assert.Error(t, err)
}

func TestImageMagick_Unavailable(t *testing.T) {
	m := NewImageMagick([]string{"mediacanon-no-such-identify"}, []string{"mediacanon-no-such-convert"}, 0)
	assert.False(t, m.ProbeAvailable())
	assert.False(t, m.Available())

	_, err := m.ProbeFormat(context.Background(), "/tmp/x.jpg")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, _, err = m.ProbeDimensions(context.Background(), "/tmp/x.jpg")
	assert.ErrorIs(t, err, ErrUnavailable)
	err = m.Convert(context.Background(), "/tmp/x.jpg", "/tmp/x.webp", 95)
	assert.ErrorIs(t, err, ErrUnavailable)
}

// installScript puts an executable shell script named name on a fresh PATH.
func installScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestImageMagick_ProbeViaScript(t *testing.T) {
	installScript(t, "fake-identify", `
case "$2" in
  "%m"*) printf 'GIF\nGIF\n' ;;
  *) printf '320 200\n320 200\n' ;;
esac`)
	m := NewImageMagick([]string{"fake-identify"}, []string{"mediacanon-no-such-convert"}, time.Second)
	require.True(t, m.ProbeAvailable())

	format, err := m.ProbeFormat(context.Background(), "/any/anim.gif")
	require.NoError(t, err)
	assert.Contains(t, format, "GIF")

	w, h, err := m.ProbeDimensions(context.Background(), "/any/anim.gif")
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
}

func TestImageMagick_ProbeTimeout(t *testing.T) {
	installScript(t, "slow-identify", "exec sleep 5")
	m := NewImageMagick([]string{"slow-identify"}, nil, 100*time.Millisecond)

	start := time.Now()
	_, err := m.ProbeFormat(context.Background(), "/any/file")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestImageMagick_ConvertArgsAndCleanup(t *testing.T) {
	dir := installScript(t, "fake-convert", `
# args: src -quality N dst
printf '%s %s %s %s' "$1" "$2" "$3" "$4" > "$4"
[ "$3" = "95" ] || { echo "bad quality" >&2; exit 3; }`)
	m := NewImageMagick([]string{"mediacanon-no-such-identify"}, []string{"fake-convert"}, 0)
	require.True(t, m.Available())

	dst := filepath.Join(dir, "out.webp")
	require.NoError(t, m.Convert(context.Background(), "in.jpg", dst, 95))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "in.jpg -quality 95 "+dst, string(data))

	failed := filepath.Join(dir, "failed.webp")
	err = m.Convert(context.Background(), "in.jpg", failed, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad quality")
	_, statErr := os.Stat(failed)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "partial output must be removed")
}

func TestRegistry_Missing(t *testing.T) {
	r := NewRegistry(Options{
		Identify: []string{"mediacanon-no-such-identify"},
		Convert:  []string{"mediacanon-no-such-convert"},
	})
	assert.Equal(t, []string{"mediacanon-no-such-identify", "mediacanon-no-such-convert"}, r.Missing())
	assert.Empty(t, r.Available())
	assert.Empty(t, r.FormatProbes())
	assert.Empty(t, r.DimensionProbes())
	assert.Nil(t, r.Converter())
	assert.Equal(t, "no tools available", r.String())

	r = NewRegistry(Options{
		Identify: []string{"mediacanon-no-such-identify"},
		Convert:  []string{"mediacanon-no-such-convert"},
		Native:   true,
	})
	assert.Len(t, r.FormatProbes(), 1)
	assert.Len(t, r.DimensionProbes(), 1)
	assert.Contains(t, r.String(), "native decoders")
	assert.Contains(t, r.String(), "missing:")
}
