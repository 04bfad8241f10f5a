package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidInput is returned for arguments no metric or primitive can work
// with: zero-pixel images, negative thresholds, rectangles outside an image.
var ErrInvalidInput = errors.New("invalid input")

// ColorTriple is the mean color of an image.
//
// Each component is a histogram-weighted mean of 8-bit channel values and
// therefore lies in the range [0, 255].
type ColorTriple struct {
	R float64 `json:"r"` // Mean red (0-255)
	G float64 `json:"g"` // Mean green (0-255)
	B float64 `json:"b"` // Mean blue (0-255)
}

// Colorful converts the triple to a go-colorful color with components in [0, 1].
func (c ColorTriple) Colorful() colorful.Color {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
}

// Hex returns the triple rounded to the nearest 8-bit color, formatted "#rrggbb".
func (c ColorTriple) Hex() string {
	return c.Colorful().Clamped().Hex()
}

// String implements fmt.Stringer.
func (c ColorTriple) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", c.R, c.G, c.B)
}

// MeanColor computes the mean RGB color of an image from its channel histograms.
//
// For every channel the function sums i*bins[i] over the 256 histogram bins
// and divides by the number of pixels. Because the result is a weighted mean
// of values in [0, 255], each component is always in that range, and a
// uniform image of color (r, g, b) yields exactly (r, g, b).
//
// Channels are binned straight (non-premultiplied), the same values the
// pixel difference and the pasted tile use; alpha does not darken the mean.
//
// # Errors
//
//   - Returns an error wrapping ErrInvalidInput if the image has no pixels.
func MeanColor(img image.Image) (ColorTriple, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return ColorTriple{}, fmt.Errorf("%w: mean color of a %dx%d image", ErrInvalidInput, bounds.Dx(), bounds.Dy())
	}
	numPixels := float64(bounds.Dx() * bounds.Dy())

	// Clone anchors the pixels at (0,0) as straight NRGBA. Handing the bytes to
	// the histogram as *image.RGBA keeps bild from premultiplying them.
	n := Clone(img)
	hist := histogram.NewRGBAHistogram(&image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect})

	return ColorTriple{
		R: weightedSum(hist.R.Bins) / numPixels,
		G: weightedSum(hist.G.Bins) / numPixels,
		B: weightedSum(hist.B.Bins) / numPixels,
	}, nil
}

func weightedSum(bins []int) float64 {
	var sum float64
	for i, count := range bins {
		sum += float64(i) * float64(count)
	}
	return sum
}

// ColorDistance returns the Euclidean distance between two mean colors in RGB space.
//
// The distance is symmetric and zero only for identical triples.
func ColorDistance(a, b ColorTriple) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
