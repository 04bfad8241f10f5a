// Package mosaic builds photomosaics by recursive quadrant subdivision.
//
// A Builder owns a read-only tile database. Create walks the source image as
// a tree of regions: a region is either filled with a single tile, chosen by
// mean color (when it is smaller than the minimum size) or by pixel
// difference (when a threshold is given and a tile is close enough), or it is
// split into four quadrants that are built independently and pasted back.
//
// Sibling quadrants share no mutable state, so Config.Workers can build them
// on several goroutines; the output is identical to a sequential build.
//
// Basic usage:
//
//	b, err := mosaic.NewFromDir("tiles/", mosaic.Config{})
//	if err != nil {
//	    return err
//	}
//	threshold := 60.0
//	if _, err := b.Create(src, 10, &threshold); err != nil {
//	    return err
//	}
//	return b.Export("out.png")
package mosaic
