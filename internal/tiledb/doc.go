// Package tiledb holds the reference tiles of a photomosaic together with
// their precomputed mean colors, and the two matchers that scan them.
//
// A Database is built once, from a directory (Build) or from in-memory images
// (FromImages), and is read-only afterwards: it may be shared by any number
// of goroutines without locking.
//
// # Matching
//
//   - Closest picks the tile whose mean color is nearest to a target color.
//   - BestExactMatch picks the tile whose pixels, resampled to the target's
//     size, differ least from the target, among tiles within a threshold.
//
// Both are linear scans. On exact distance ties the tile that comes first in
// build order wins, so results are deterministic for a given build. Build
// order is the lexical order of file names for Build and argument order for
// FromImages.
//
// BestExactMatch resamples every tile to the target's size and compares every
// pixel, so one call costs O(tiles × pixels). It dominates the running time
// of a mosaic built with a threshold.
package tiledb
