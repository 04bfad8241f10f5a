package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMeanColor_Uniform(t *testing.T) {
	tests := []struct {
		name  string
		color color.RGBA
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}},
		{"pure green", color.RGBA{0, 255, 0, 255}},
		{"pure blue", color.RGBA{0, 0, 255, 255}},
		{"white", color.RGBA{255, 255, 255, 255}},
		{"black", color.RGBA{0, 0, 0, 255}},
		{"orange", color.RGBA{255, 128, 64, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(13, 7, tt.color)
			got, err := MeanColor(img)
			if err != nil {
				t.Fatalf("MeanColor failed: %v", err)
			}
			want := ColorTriple{R: float64(tt.color.R), G: float64(tt.color.G), B: float64(tt.color.B)}
			if got != want {
				t.Errorf("MeanColor: got %v, want %v", got, want)
			}
		})
	}
}

func TestMeanColor_Pattern(t *testing.T) {
	// Quadrants: red, green, blue, white -> each channel is 255 on half the pixels.
	img := createPatternImage(100, 100)

	got, err := MeanColor(img)
	if err != nil {
		t.Fatalf("MeanColor failed: %v", err)
	}

	want := 127.5
	if got.R != want || got.G != want || got.B != want {
		t.Errorf("MeanColor: got %v, want (%.1f, %.1f, %.1f)", got, want, want, want)
	}
}

func TestMeanColor_InRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), uint8((x + y) * 4), 255})
		}
	}

	got, err := MeanColor(img)
	if err != nil {
		t.Fatalf("MeanColor failed: %v", err)
	}
	for _, v := range []float64{got.R, got.G, got.B} {
		if v < 0 || v > 255 {
			t.Errorf("component %v outside [0,255]", v)
		}
	}
}

func TestMeanColor_SubImage(t *testing.T) {
	img := createPatternImage(100, 100)
	sub := img.SubImage(image.Rect(50, 50, 100, 100))

	got, err := MeanColor(sub)
	if err != nil {
		t.Fatalf("MeanColor failed: %v", err)
	}
	want := ColorTriple{R: 255, G: 255, B: 255}
	if got != want {
		t.Errorf("MeanColor of white quadrant: got %v, want %v", got, want)
	}
}

func TestMeanColor_StraightAlpha(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want ColorTriple
	}{
		{"transparent", color.NRGBA{255, 0, 0, 0}, ColorTriple{R: 255}},
		{"half transparent", color.NRGBA{200, 100, 50, 128}, ColorTriple{R: 200, G: 100, B: 50}},
		{"opaque", color.NRGBA{10, 20, 30, 255}, ColorTriple{R: 10, G: 20, B: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
			for y := 0; y < 4; y++ {
				for x := 0; x < 6; x++ {
					img.SetNRGBA(x, y, tt.c)
				}
			}
			got, err := MeanColor(img)
			if err != nil {
				t.Fatalf("MeanColor failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("MeanColor: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanColor_Empty(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"zero size", image.NewRGBA(image.Rect(0, 0, 0, 0))},
		{"zero width", image.NewRGBA(image.Rect(0, 0, 0, 10))},
		{"zero height", image.NewRGBA(image.Rect(0, 0, 10, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeanColor(tt.img)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("MeanColor error: got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestColorDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b ColorTriple
		want float64
	}{
		{"identical", ColorTriple{10, 20, 30}, ColorTriple{10, 20, 30}, 0},
		{"one channel", ColorTriple{0, 0, 0}, ColorTriple{3, 0, 0}, 3},
		{"pythagorean", ColorTriple{0, 0, 0}, ColorTriple{3, 4, 0}, 5},
		{"black to white", ColorTriple{0, 0, 0}, ColorTriple{255, 255, 255}, math.Sqrt(3 * 255 * 255)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ColorDistance: got %v, want %v", got, tt.want)
			}
			if back := ColorDistance(tt.b, tt.a); back != got {
				t.Errorf("ColorDistance not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestColorDistance_SelfIsZero(t *testing.T) {
	for _, c := range []ColorTriple{{0, 0, 0}, {255, 255, 255}, {12.5, 200.25, 99.75}} {
		if d := ColorDistance(c, c); d != 0 {
			t.Errorf("ColorDistance(%v, %v) = %v, want 0", c, c, d)
		}
	}
}

func TestColorTriple_Hex(t *testing.T) {
	tests := []struct {
		c    ColorTriple
		want string
	}{
		{ColorTriple{255, 0, 0}, "#ff0000"},
		{ColorTriple{255, 128, 64}, "#ff8040"},
		{ColorTriple{127.6, 127.4, 0}, "#807f00"},
		{ColorTriple{0, 0, 0}, "#000000"},
	}

	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.want {
			t.Errorf("Hex(%v): got %s, want %s", tt.c, got, tt.want)
		}
	}
}
