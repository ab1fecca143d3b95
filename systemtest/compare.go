package systemtest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

var ErrSizeMismatch = errors.New("images differ in size")

// Resolution returns the WxH of the PNG at path.
func Resolution(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), nil
}

// Similarity compares two images by their mean absolute error over the color
// channels and returns 1 - MAE clamped to [0, 1], with 1 meaning identical.
// When diff is not nil it receives the per-pixel absolute difference.
func Similarity(base, test image.Image, diff *image.RGBA) (float64, error) {
	b, t := base.Bounds(), test.Bounds()
	if b.Dx() != t.Dx() || b.Dy() != t.Dy() {
		return 0, fmt.Errorf("%w: %dx%d and %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), t.Dx(), t.Dy())
	}
	if b.Empty() {
		return 1, nil
	}

	var sum float64
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r1, g1, b1, _ := base.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r2, g2, b2, _ := test.At(t.Min.X+x, t.Min.Y+y).RGBA()

			dr, dg, db := absDiff(r1, r2), absDiff(g1, g2), absDiff(b1, b2)
			sum += float64(dr+dg+db) / 0xffff

			if diff != nil {
				diff.Set(diff.Rect.Min.X+x, diff.Rect.Min.Y+y, color.RGBA64{R: uint16(dr), G: uint16(dg), B: uint16(db), A: 0xffff})
			}
		}
	}

	mae := sum / float64(3*b.Dx()*b.Dy())
	return max(0, min(1-mae, 1)), nil
}

// CompareFiles compares the PNGs at basePath and testPath and writes the
// difference image to diffPath.
func CompareFiles(basePath, testPath, diffPath string) (float64, error) {
	base, err := decode(basePath)
	if err != nil {
		return 0, err
	}
	test, err := decode(testPath)
	if err != nil {
		return 0, err
	}

	diff := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx(), base.Bounds().Dy()))
	similarity, err := Similarity(base, test, diff)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(diffPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := png.Encode(f, diff); err != nil {
		return 0, fmt.Errorf("encode %s: %w", diffPath, err)
	}
	return similarity, f.Close()
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
