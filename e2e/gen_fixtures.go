//go:build ignore

// gen_fixtures creates an upload tree with several renditions per asset
// for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	n := 0

	// Banner: original plus the sized renditions a CMS would generate.
	banner := gradient(400, 225)
	writeJPEG(filepath.Join(dir, "2024/03/banner.jpg"), banner)
	for _, w := range []int{300, 150} {
		h := w * 225 / 400
		writeJPEG(filepath.Join(dir, fmt.Sprintf("2024/03/banner-%dx%d.jpg", w, h)), imaging.Resize(banner, w, h, imaging.Lanczos))
		n++
	}
	writeJPEG(filepath.Join(dir, "2024/03/banner-150x84@2x.jpg"), imaging.Resize(banner, 300, 168, imaging.Lanczos))
	n += 2

	// Cards: one PNG each, plus a stray smaller copy in another month.
	for i := 1; i <= 3; i++ {
		img := solidWithBorder(200, 150, uint8(i*60))
		writePNG(filepath.Join(dir, "2024/04", fmt.Sprintf("card-%d.png", i)), img)
		writePNG(filepath.Join(dir, "2024/05", fmt.Sprintf("card-%d-100x75.png", i)), imaging.Resize(img, 100, 75, imaging.Box))
		n += 2
	}

	// Vector and static assets, with duplicates across directories.
	writeText(filepath.Join(dir, "logo.svg"), `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`)
	writeText(filepath.Join(dir, "theme/logo.svg"), `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"><rect width="100" height="100"/></svg>`)
	writeText(filepath.Join(dir, "theme/style.css"), "body{margin:0}\n")
	writeText(filepath.Join(dir, "cache/style.css"), "body{margin:0}\n/* cached */\n")
	writeText(filepath.Join(dir, "debug.log"), "ok\n")
	writeText(filepath.Join(dir, "archive.xyz"), "unknown format\n")
	n += 6

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", n, dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func create(path string) *os.File {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	return f
}

func writePNG(path string, img image.Image) {
	f := create(path)
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img image.Image) {
	f := create(path)
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}

func writeText(path, body string) {
	f := create(path)
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		panic(err)
	}
}
