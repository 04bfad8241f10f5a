package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
)

// Quadrant names one of the four rectangles a region is divided into.
//
// The constants are declared in the order the mosaic builder visits them.
type Quadrant int

const (
	TopLeft Quadrant = iota
	BottomLeft
	BottomRight
	TopRight
)

// AllQuadrants lists every quadrant in visiting order.
var AllQuadrants = [4]Quadrant{TopLeft, BottomLeft, BottomRight, TopRight}

func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top-left"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case TopRight:
		return "top-right"
	default:
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
}

// Rect returns the quadrant's rectangle inside a w x h region whose origin is (0,0).
//
// Midpoints use integer floor division, so for odd sizes the right and bottom
// quadrants are one pixel larger than the left and top ones. The four
// rectangles never overlap and always cover the whole region.
func (q Quadrant) Rect(w, h int) image.Rectangle {
	midX := w / 2
	midY := h / 2

	switch q {
	case TopLeft:
		return image.Rect(0, 0, midX, midY)
	case BottomLeft:
		return image.Rect(0, midY, midX, h)
	case BottomRight:
		return image.Rect(midX, midY, w, h)
	case TopRight:
		return image.Rect(midX, 0, w, midY)
	default:
		return image.Rectangle{}
	}
}

// Crop extracts a rectangular region from an image into a new buffer.
//
// The rectangle is given relative to the image's top-left corner, so for
// images whose bounds do not start at (0,0) the offset is applied first.
// The returned image has bounds (0,0)-(r.Dx(),r.Dy()).
//
// # Errors
//
//   - Returns an error wrapping ErrInvalidInput if r is empty or extends
//     outside the image.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	abs := r.Add(bounds.Min)

	if r.Empty() {
		return nil, fmt.Errorf("%w: empty crop region %v", ErrInvalidInput, r)
	}
	if !abs.In(bounds) {
		return nil, fmt.Errorf("%w: crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			ErrInvalidInput, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Dx(), bounds.Dy())
	}

	return imaging.Crop(img, abs), nil
}

// CropQuadrant extracts one quadrant of an image into a new buffer.
func CropQuadrant(img image.Image, q Quadrant) (*image.NRGBA, error) {
	bounds := img.Bounds()
	return Crop(img, q.Rect(bounds.Dx(), bounds.Dy()))
}

// Paste copies src into dst so that src's top-left corner lands on r.Min.
//
// Only the part of src that fits inside r is copied; dst outside r is left
// untouched. Pastes into disjoint rectangles of the same destination may run
// concurrently.
func Paste(dst *image.NRGBA, src image.Image, r image.Rectangle) {
	draw.Draw(dst, r.Add(dst.Bounds().Min), src, src.Bounds().Min, draw.Src)
}

// Clone returns an owned copy of img with bounds starting at (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// Filter selects the resampling kernel used when a tile is resized.
type Filter string

const (
	FilterNearest    Filter = "nearest"
	FilterBox        Filter = "box"
	FilterLinear     Filter = "linear"
	FilterCatmullRom Filter = "catmullrom"
	FilterLanczos    Filter = "lanczos"
)

// DefaultFilter is nearest-neighbour resampling.
const DefaultFilter = FilterNearest

// Filters lists every supported filter name.
var Filters = []Filter{FilterNearest, FilterBox, FilterLinear, FilterCatmullRom, FilterLanczos}

// ParseFilter resolves a filter name case-insensitively. An empty name
// selects DefaultFilter.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return DefaultFilter, nil
	}
	f := Filter(strings.ToLower(name))
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown resampling filter %q", ErrInvalidInput, name)
}

func (f Filter) resample() imaging.ResampleFilter {
	switch f {
	case FilterBox:
		return imaging.Box
	case FilterLinear:
		return imaging.Linear
	case FilterCatmullRom:
		return imaging.CatmullRom
	case FilterLanczos:
		return imaging.Lanczos
	default:
		return imaging.NearestNeighbor
	}
}

// Resize resamples img to exactly w x h pixels.
//
// All filters are deterministic. Resizing to the image's own size returns an
// exact copy, whichever filter is selected.
//
// # Errors
//
//   - Returns an error wrapping ErrInvalidInput if w or h is not positive or
//     img has no pixels.
func Resize(img image.Image, w, h int, f Filter) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: resize target %dx%d", ErrInvalidInput, w, h)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: resize of an empty image", ErrInvalidInput)
	}
	return imaging.Resize(img, w, h, f.resample()), nil
}
