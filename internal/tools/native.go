package tools

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Native reads format and dimensions from image headers with Go's decoders
// (gif, jpeg, png, bmp, tiff, webp). Nothing is shelled out and only the
// header is read. SVG and other formats are not recognized.
type Native struct{}

func (Native) Name() string { return "native" }

// ProbeFormat returns the registered decoder name, e.g. "jpeg" or "webp".
func (Native) ProbeFormat(_ context.Context, path string) (string, error) {
	_, format, err := decodeConfig(path)
	return format, err
}

// ProbeDimensions returns the width and height from the image header.
func (Native) ProbeDimensions(_ context.Context, path string) (int, int, error) {
	cfg, _, err := decodeConfig(path)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func decodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode header %s: %w", path, err)
	}
	return cfg, format, nil
}
