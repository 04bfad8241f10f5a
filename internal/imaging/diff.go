package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// PixelDifference measures how closely b reproduces a, pixel by pixel.
//
// b is resampled to a's dimensions with the given filter, then the Euclidean
// distance sqrt(dr² + dg² + db²) between corresponding pixels is averaged over
// every pixel of a. The result is in [0, 441.68] (the diagonal of the RGB cube).
//
// Parameters:
//   - a: The reference image (typically a draft region).
//   - b: The candidate image (typically a tile). Its size does not matter.
//   - threshold: Maximum accepted distance. Must be >= 0.
//   - f: Resampling filter used to bring b to a's size.
//
// Returns:
//   - float64: The mean per-pixel distance.
//   - bool: true if the distance is <= threshold. A distance exactly equal to
//     the threshold is accepted.
//   - error: Non-nil for invalid input; the other results are then zero.
//
// Comparing an image with itself always yields (0, true).
//
// # Memory
//
// One resized copy of b is allocated and released before returning; no
// difference image is materialised.
func PixelDifference(a, b image.Image, threshold float64, f Filter) (float64, bool, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return 0, false, fmt.Errorf("%w: negative threshold %v", ErrInvalidInput, threshold)
	}

	dist, err := MeanPixelDistance(a, b, f)
	if err != nil {
		return 0, false, err
	}

	return dist, dist <= threshold, nil
}

// MeanPixelDistance is PixelDifference without the threshold test.
//
// Rows are summed in parallel and the per-row sums are reduced in row order,
// so the result is identical from run to run.
func MeanPixelDistance(a, b image.Image, f Filter) (float64, error) {
	bounds := a.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("%w: pixel difference against a %dx%d image", ErrInvalidInput, w, h)
	}

	src := asNRGBA(a)
	other, err := Resize(b, w, h, f)
	if err != nil {
		return 0, err
	}

	rowSums := make([]float64, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			i := y * src.Stride
			j := y * other.Stride
			var sum float64
			for x := 0; x < w; x++ {
				dr := float64(src.Pix[i]) - float64(other.Pix[j])
				dg := float64(src.Pix[i+1]) - float64(other.Pix[j+1])
				db := float64(src.Pix[i+2]) - float64(other.Pix[j+2])
				sum += math.Sqrt(dr*dr + dg*dg + db*db)
				i += 4
				j += 4
			}
			rowSums[y] = sum
		}
	})

	var total float64
	for _, s := range rowSums {
		total += s
	}
	return total / float64(w*h), nil
}

// DifferenceImage returns the per-channel absolute difference |a - b| with b
// resampled to a's size. The result is fully opaque.
func DifferenceImage(a, b image.Image, f Filter) (*image.NRGBA, error) {
	bounds := a.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: difference against a %dx%d image", ErrInvalidInput, w, h)
	}

	src := asNRGBA(a)
	other, err := Resize(b, w, h, f)
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		i := y * src.Stride
		j := y * other.Stride
		k := y * dst.Stride
		for x := 0; x < w; x++ {
			dst.Pix[k] = absDiff(src.Pix[i], other.Pix[j])
			dst.Pix[k+1] = absDiff(src.Pix[i+1], other.Pix[j+1])
			dst.Pix[k+2] = absDiff(src.Pix[i+2], other.Pix[j+2])
			dst.Pix[k+3] = 0xff
			i += 4
			j += 4
			k += 4
		}
	}
	return dst, nil
}

// asNRGBA returns img itself when it is already an NRGBA buffer anchored at
// (0,0), and a converted copy otherwise.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return Clone(img)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
