package tiledb

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
)

// Closest returns the tile whose mean color is nearest to target.
//
// Ties go to the tile that comes first in build order.
func (db *Database) Closest(target imaging.ColorTriple) *Tile {
	var best *Tile
	bestDist := math.Inf(1)
	for _, t := range db.tiles {
		if d := imaging.ColorDistance(target, t.Mean); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// ClosestTo computes the mean color of img and returns the Closest tile.
func (db *Database) ClosestTo(img image.Image) (*Tile, error) {
	mean, err := imaging.MeanColor(img)
	if err != nil {
		return nil, err
	}
	return db.Closest(mean), nil
}

// Match is a tile accepted by BestExactMatch.
type Match struct {
	Tile     *Tile
	Distance float64 // Mean per-pixel distance, see imaging.PixelDifference
}

// BestExactMatch returns the tile that best reproduces target pixel by pixel.
//
// Every tile is resampled to target's size with filter f and compared with
// imaging.PixelDifference. Among the tiles whose distance is <= threshold the
// one with the smallest distance is returned; ties go to the tile that comes
// first in build order. The boolean is false when no tile is within the
// threshold.
//
// This is a full scan costing O(tiles × pixels of target).
//
// # Errors
//
//   - An error wrapping imaging.ErrInvalidInput for a negative threshold or a
//     target with no pixels.
func (db *Database) BestExactMatch(target image.Image, threshold float64, f imaging.Filter) (Match, bool, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return Match{}, false, fmt.Errorf("%w: negative threshold %v", imaging.ErrInvalidInput, threshold)
	}

	var best Match
	found := false
	for _, t := range db.tiles {
		dist, ok, err := imaging.PixelDifference(target, t.Image, threshold, f)
		if err != nil {
			return Match{}, false, err
		}
		if ok && (!found || dist < best.Distance) {
			best = Match{Tile: t, Distance: dist}
			found = true
		}
	}
	return best, found, nil
}
