// Package imaging shrinks album uploads before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension is the longest side kept after compression.
	MaxDimension = 800
	// Quality is the JPEG quality of stored photos.
	Quality = 70
	// MaxPixels bounds the decoded size of an upload. Decoding allocates the
	// full bitmap, so larger images are refused from their header alone.
	MaxPixels = 40_000_000

	ContentType = "image/jpeg"
)

// ErrEmpty is returned for a zero-byte upload.
var ErrEmpty = errors.New("imaging: empty image")

// ErrTooLarge is returned when an image declares more than MaxPixels.
var ErrTooLarge = errors.New("imaging: image dimensions too large")

// Result is a compressed JPEG.
type Result struct {
	Data          []byte
	Width, Height int
	// SourceFormat is the decoder that recognised the input, e.g. "png".
	SourceFormat string
}

// Fit returns the output size for a w×h image. Landscape images wider than
// MaxDimension are scaled by width; anything else taller than MaxDimension
// is scaled by height. Rounding is half away from zero.
func Fit(w, h int) (int, int) {
	if w > h && w > MaxDimension {
		return MaxDimension, round(float64(h) * MaxDimension / float64(w))
	}
	if h > MaxDimension {
		return round(float64(w) * MaxDimension / float64(h)), MaxDimension
	}
	return w, h
}

func round(v float64) int {
	n := int(math.Floor(v + 0.5))
	if n < 1 {
		return 1
	}
	return n
}

// Compress decodes r, scales it with Fit, and encodes a JPEG at Quality.
func Compress(r io.Reader) (Result, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading image: %w", err)
	}
	if n == 0 {
		return Result{}, ErrEmpty
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Result{}, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(&buf)
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy())

	// JPEG has no alpha; flatten onto white like a canvas export does.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return Result{}, fmt.Errorf("encoding jpeg: %w", err)
	}
	return Result{Data: out.Bytes(), Width: w, Height: h, SourceFormat: format}, nil
}
