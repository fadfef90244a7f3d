// Package tools wraps the external programs (and the pure-Go fallback) used
// to probe file formats, read pixel dimensions and convert images.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnavailable is returned when the backing program is not installed.
	ErrUnavailable = errors.New("tool unavailable")

	// ErrBadOutput is returned when a probe answers with something unparsable.
	ErrBadOutput = errors.New("unexpected tool output")
)

// Converter re-encodes an image file into a new file. The destination
// encoding follows the extension of dst.
type Converter interface {
	Name() string
	Available() bool
	Convert(ctx context.Context, src, dst string, quality int) error
}

// ParseDimensions parses "<width> <height>" as printed by a probe. Only the
// first line is considered.
func ParseDimensions(out string) (width, height int, err error) {
	line := strings.TrimSpace(out)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadOutput, out)
	}
	w, errW := strconv.Atoi(fields[0])
	h, errH := strconv.Atoi(fields[1])
	if errW != nil || errH != nil || w < 0 || h < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadOutput, out)
	}
	return w, h, nil
}
