package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPixelDifference_Identity(t *testing.T) {
	images := map[string]image.Image{
		"uniform": createInMemoryImage(20, 20, color.RGBA{12, 34, 56, 255}),
		"pattern": createPatternImage(31, 17),
	}

	for name, img := range images {
		for _, f := range Filters {
			t.Run(name+"/"+string(f), func(t *testing.T) {
				for _, threshold := range []float64{0, 5, 1000} {
					dist, ok, err := PixelDifference(img, img, threshold, f)
					if err != nil {
						t.Fatalf("PixelDifference failed: %v", err)
					}
					if !ok || dist != 0 {
						t.Errorf("threshold %v: got (%v, %v), want (0, true)", threshold, dist, ok)
					}
				}
			})
		}
	}
}

func TestPixelDifference_KnownDistance(t *testing.T) {
	a := createInMemoryImage(10, 10, color.RGBA{0, 0, 0, 255})
	b := createInMemoryImage(10, 10, color.RGBA{3, 4, 0, 255})

	dist, _, err := PixelDifference(a, b, 100, FilterNearest)
	if err != nil {
		t.Fatalf("PixelDifference failed: %v", err)
	}
	if dist != 5 {
		t.Errorf("distance: got %v, want 5", dist)
	}
}

func TestPixelDifference_ThresholdBoundary(t *testing.T) {
	a := createInMemoryImage(8, 8, color.RGBA{0, 0, 0, 255})
	b := createInMemoryImage(8, 8, color.RGBA{3, 4, 0, 255})

	tests := []struct {
		threshold float64
		want      bool
	}{
		{4.999, false},
		{5, true},
		{5.001, true},
	}

	for _, tt := range tests {
		_, ok, err := PixelDifference(a, b, tt.threshold, FilterNearest)
		if err != nil {
			t.Fatalf("PixelDifference failed: %v", err)
		}
		if ok != tt.want {
			t.Errorf("threshold %v: got match=%v, want %v", tt.threshold, ok, tt.want)
		}
	}
}

func TestPixelDifference_ResizesCandidate(t *testing.T) {
	a := createInMemoryImage(40, 30, color.RGBA{200, 100, 50, 255})
	b := createInMemoryImage(7, 9, color.RGBA{200, 100, 50, 255})

	dist, ok, err := PixelDifference(a, b, 0, FilterNearest)
	if err != nil {
		t.Fatalf("PixelDifference failed: %v", err)
	}
	if !ok || dist != 0 {
		t.Errorf("got (%v, %v), want (0, true)", dist, ok)
	}
}

func TestPixelDifference_HalfDifferent(t *testing.T) {
	a := createInMemoryImage(10, 10, color.RGBA{0, 0, 0, 255})
	b := createInMemoryImage(10, 10, color.RGBA{0, 0, 0, 255})
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			b.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	dist, err := MeanPixelDistance(a, b, FilterNearest)
	if err != nil {
		t.Fatalf("MeanPixelDistance failed: %v", err)
	}
	want := math.Sqrt(3*255*255) / 2
	if math.Abs(dist-want) > 1e-9 {
		t.Errorf("distance: got %v, want %v", dist, want)
	}
}

func TestPixelDifference_InvalidInput(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{0, 0, 0, 255})
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))

	tests := []struct {
		name      string
		a, b      image.Image
		threshold float64
	}{
		{"negative threshold", img, img, -1},
		{"NaN threshold", img, img, math.NaN()},
		{"empty reference", empty, img, 5},
		{"empty candidate", img, empty, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := PixelDifference(tt.a, tt.b, tt.threshold, FilterNearest)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
			if ok {
				t.Error("invalid input must not report a match")
			}
		})
	}
}

func TestDifferenceImage(t *testing.T) {
	a := createInMemoryImage(6, 6, color.RGBA{100, 50, 200, 255})
	b := createInMemoryImage(3, 3, color.RGBA{40, 80, 200, 255})

	diff, err := DifferenceImage(a, b, FilterNearest)
	if err != nil {
		t.Fatalf("DifferenceImage failed: %v", err)
	}
	if diff.Bounds() != a.Bounds() {
		t.Errorf("bounds: got %v, want %v", diff.Bounds(), a.Bounds())
	}
	want := color.NRGBA{60, 30, 0, 255}
	if got := diff.NRGBAAt(5, 5); got != want {
		t.Errorf("pixel: got %v, want %v", got, want)
	}
}
