// Package imaging provides the image primitives and similarity metrics used
// to build photomosaics.
//
// This package implements the color statistics (histogram-weighted mean
// color), the two distance metrics used by tile matching, and the thin image
// plumbing the mosaic builder relies on: decoding, cropping, quadrant
// division, resizing, pasting and saving. All operations work with standard
// Go image.Image values and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based. For rectangles, Min is
// inclusive and Max is exclusive, matching image.Rectangle.
//
// # Owned Buffers
//
// Functions that produce pixels (Crop, CropQuadrant, Resize, Clone) always
// return a freshly allocated *image.NRGBA whose bounds start at (0,0). The
// caller owns it and may mutate it without affecting the source image.
//
// # Metrics
//
//   - MeanColor: per-channel mean computed from the 256-bin RGB histograms.
//   - ColorDistance: Euclidean distance between two mean colors.
//   - PixelDifference: mean per-pixel Euclidean RGB distance between an image
//     and a second image resampled to its size, with an inclusive threshold.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and may be called concurrently as long as the images passed in
// are not mutated at the same time.
//
// # Error Handling
//
// Invalid arguments (zero-pixel images, negative thresholds, rectangles
// outside the image) are reported with errors wrapping ErrInvalidInput.
// Decode and encode failures are wrapped with the file path.
package imaging
