// Package cli implements the mosaic command line.
//
// Commands:
//   - build: build a photomosaic of an image from a tile directory
//   - stats: list a tile directory with content hashes and mean colors
//   - compare: pixel and mean-color distance between two images
//
// Logging goes to stderr through logrus; reports go to stdout.
package cli
