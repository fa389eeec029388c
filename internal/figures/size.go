package figures

import (
	"fmt"
	"image"
	"os"

	// Dimension probing covers the formats the upload tooling accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pxToPt converts pixels to points at the assumed 96 DPI (1px = 0.75pt).
const pxToPt = 0.75

// MaxWidthPt caps the rendered width of a figure to the printable width.
const MaxWidthPt = 450

// defaultHeightPt is the height estimate used when the source image
// cannot be decoded; placement proceeds with it rather than failing.
const defaultHeightPt = 200

// NaturalSize reports an image's render size in points: its pixel size at
// 96 DPI, scaled down proportionally when wider than MaxWidthPt.
func NaturalSize(path string) (w, h float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("decode %s: empty image", path)
	}
	w = float64(cfg.Width) * pxToPt
	h = float64(cfg.Height) * pxToPt
	if w > MaxWidthPt {
		h = h * MaxWidthPt / w
		w = MaxWidthPt
	}
	return w, h, nil
}
