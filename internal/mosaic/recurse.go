package mosaic

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
	"github.com/ironsheep/mosaic-tools-mcp/internal/tiledb"
)

// run is the state of one Create call. Counters are atomic because sibling
// subtrees may be built on different goroutines; everything else is read-only.
type run struct {
	db        *tiledb.Database
	filter    imaging.Filter
	minSize   int
	threshold *float64
	maxDepth  int

	// sem holds one token per extra goroutine allowed. Nil means sequential.
	sem chan struct{}

	regions      atomic.Int64
	closest      atomic.Int64
	exact        atomic.Int64
	subdivisions atomic.Int64
	deepest      atomic.Int64
}

func (r *run) stats() Stats {
	return Stats{
		Regions:      int(r.regions.Load()),
		ClosestTiles: int(r.closest.Load()),
		ExactTiles:   int(r.exact.Load()),
		Subdivisions: int(r.subdivisions.Load()),
		MaxDepth:     int(r.deepest.Load()),
	}
}

// build returns the mosaic of draft. draft is owned by the call and may be
// overwritten; the returned buffer has the same size.
func (r *run) build(draft *image.NRGBA, depth int) (*image.NRGBA, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds limit %d", ErrRecursionLimitExceeded, depth, r.maxDepth)
	}
	r.regions.Add(1)
	r.observeDepth(int64(depth))

	w, h := draft.Bounds().Dx(), draft.Bounds().Dy()

	if w < r.minSize || h < r.minSize || w < 2 || h < 2 {
		tile, err := r.db.ClosestTo(draft)
		if err != nil {
			return nil, err
		}
		r.closest.Add(1)
		return imaging.Resize(tile.Image, w, h, r.filter)
	}

	if r.threshold != nil {
		m, ok, err := r.db.BestExactMatch(draft, *r.threshold, r.filter)
		if err != nil {
			return nil, err
		}
		if ok {
			r.exact.Add(1)
			return imaging.Resize(m.Tile.Image, w, h, r.filter)
		}
	}

	r.subdivisions.Add(1)

	var parts [4]*image.NRGBA
	err := r.forEachQuadrant(func(i int, q imaging.Quadrant) error {
		crop, err := imaging.CropQuadrant(draft, q)
		if err != nil {
			return err
		}
		parts[i], err = r.build(crop, depth+1)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, q := range imaging.AllQuadrants {
		imaging.Paste(draft, parts[i], q.Rect(w, h))
	}
	return draft, nil
}

// forEachQuadrant calls fn for the four quadrants and waits for all of them.
// A quadrant goes to a new goroutine only if a token is free; otherwise it
// runs on the calling goroutine, so nested levels can never deadlock. The
// first error in quadrant order is returned.
func (r *run) forEachQuadrant(fn func(i int, q imaging.Quadrant) error) error {
	var errs [4]error

	if r.sem == nil {
		for i, q := range imaging.AllQuadrants {
			if errs[i] = fn(i, q); errs[i] != nil {
				return errs[i]
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	for i, q := range imaging.AllQuadrants {
		select {
		case r.sem <- struct{}{}:
			wg.Add(1)
			go func(i int, q imaging.Quadrant) {
				defer wg.Done()
				defer func() { <-r.sem }()
				errs[i] = fn(i, q)
			}(i, q)
		default:
			errs[i] = fn(i, q)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) observeDepth(depth int64) {
	for {
		cur := r.deepest.Load()
		if depth <= cur || r.deepest.CompareAndSwap(cur, depth) {
			return
		}
	}
}
