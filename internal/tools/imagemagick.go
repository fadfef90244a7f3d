package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds every identify call.
const DefaultProbeTimeout = 5 * time.Second

// ImageMagick probes formats and dimensions with `identify` and converts
// with `convert`. Each command is a prefix, so ImageMagick 7 can be driven
// as []string{"magick", "identify"}.
// Install: brew install imagemagick / apt install imagemagick
type ImageMagick struct {
	IdentifyCmd []string
	ConvertCmd  []string
	Timeout     time.Duration

	once        sync.Once
	identifyBin string
	convertBin  string
}

// NewImageMagick returns a driver using the given command prefixes. Empty
// prefixes default to "identify" and "convert".
func NewImageMagick(identify, convert []string, timeout time.Duration) *ImageMagick {
	if len(identify) == 0 {
		identify = []string{"identify"}
	}
	if len(convert) == 0 {
		convert = []string{"convert"}
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ImageMagick{IdentifyCmd: identify, ConvertCmd: convert, Timeout: timeout}
}

func (m *ImageMagick) lookup() {
	m.once.Do(func() {
		if path, err := exec.LookPath(m.IdentifyCmd[0]); err == nil {
			m.identifyBin = path
		}
		if path, err := exec.LookPath(m.ConvertCmd[0]); err == nil {
			m.convertBin = path
		}
	})
}

// Name implements media.FormatProbe, media.DimensionProbe and Converter.
func (m *ImageMagick) Name() string { return "imagemagick" }

// ProbeAvailable reports whether the identify command is on PATH.
func (m *ImageMagick) ProbeAvailable() bool {
	m.lookup()
	return m.identifyBin != ""
}

// Available reports whether the convert command is on PATH.
func (m *ImageMagick) Available() bool {
	m.lookup()
	return m.convertBin != ""
}

// ProbeFormat returns identify's format identifier (%m) for path.
func (m *ImageMagick) ProbeFormat(ctx context.Context, path string) (string, error) {
	out, err := m.identify(ctx, "%m\n", path)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", fmt.Errorf("%w: empty format for %s", ErrBadOutput, path)
	}
	return id, nil
}

// ProbeDimensions returns the width and height of the first frame of path.
func (m *ImageMagick) ProbeDimensions(ctx context.Context, path string) (int, int, error) {
	out, err := m.identify(ctx, "%w %h\n", path)
	if err != nil {
		return 0, 0, err
	}
	return ParseDimensions(out)
}

func (m *ImageMagick) identify(ctx context.Context, format, path string) (string, error) {
	if !m.ProbeAvailable() {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, m.IdentifyCmd[0])
	}
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	args := append(append([]string{}, m.IdentifyCmd[1:]...), "-format", format, path)
	cmd := exec.CommandContext(ctx, m.identifyBin, args...)
	cmd.WaitDelay = time.Second // grandchildren may hold stdout open
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("identify %s: timed out after %s", path, m.Timeout)
		}
		return "", fmt.Errorf("identify %s: %w", path, err)
	}
	return stdout.String(), nil
}

// Convert writes src re-encoded to dst at the given quality. It runs to
// completion unless ctx is cancelled. A partial dst left by a failed run is
// removed so the next run does not mistake it for a finished conversion.
func (m *ImageMagick) Convert(ctx context.Context, src, dst string, quality int) error {
	if !m.Available() {
		return fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, m.ConvertCmd[0])
	}
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	args := append(append([]string{}, m.ConvertCmd[1:]...),
		src,
		"-quality", fmt.Sprintf("%d", quality),
		dst,
	)
	_, statErr := os.Stat(dst)
	existed := statErr == nil

	cmd := exec.CommandContext(ctx, m.convertBin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if !existed {
			os.Remove(dst)
		}
		return fmt.Errorf("convert: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
