package mosaic

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/bits"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
	"github.com/ironsheep/mosaic-tools-mcp/internal/tiledb"
)

var (
	// ErrInvalidInput is returned for a non-positive minimum size, a negative
	// threshold or an image without pixels.
	ErrInvalidInput = imaging.ErrInvalidInput

	// ErrRecursionLimitExceeded is returned when subdivision goes deeper than
	// the configured or derived depth limit.
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
)

// Config holds the tunables of a Builder.
type Config struct {
	// Filter is the resampling filter used to fit tiles to regions and to
	// compare tiles against regions. Empty selects imaging.DefaultFilter.
	Filter imaging.Filter

	// Workers bounds how many quadrant subtrees are built concurrently.
	// Values <= 1 build sequentially; a negative value selects GOMAXPROCS.
	Workers int

	// MaxDepth overrides the subdivision depth limit. Zero derives the limit
	// from the image size.
	MaxDepth int

	// JPEGQuality is passed to the output writer for .jpg/.jpeg exports.
	JPEGQuality int
}

// WithDefaults returns cfg as New would store it: an empty Filter becomes
// imaging.DefaultFilter and a negative Workers becomes GOMAXPROCS.
func (c Config) WithDefaults() Config {
	if c.Filter == "" {
		c.Filter = imaging.DefaultFilter
	}
	if c.Workers < 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Stats describes the most recent Create call.
type Stats struct {
	Regions        int           `json:"regions"`          // Regions visited, including subdivided ones
	ClosestTiles   int           `json:"closest_tiles"`    // Regions filled by mean-color match
	ExactTiles     int           `json:"exact_tiles"`      // Regions filled by threshold match
	Subdivisions   int           `json:"subdivisions"`     // Regions split into quadrants
	MaxDepth       int           `json:"max_depth"`        // Deepest level reached (root is 0)
	DepthLimit     int           `json:"depth_limit"`      // Limit that was in force
	Elapsed        time.Duration `json:"elapsed_ns"`       // Wall time of Create
	ThresholdInUse bool          `json:"threshold_in_use"` // Whether exact matching was enabled
}

// Builder turns images into photomosaics using one tile database.
//
// A Builder is safe for concurrent use; Create and Export calls are
// serialised.
type Builder struct {
	db  *tiledb.Database
	cfg Config

	mu     sync.Mutex
	result *image.NRGBA
	stats  Stats
}

// New creates a Builder over an already built tile database.
func New(db *tiledb.Database, cfg Config) (*Builder, error) {
	if db == nil || db.Len() == 0 {
		return nil, tiledb.ErrDatabaseEmpty
	}
	cfg = cfg.WithDefaults()
	if _, err := imaging.ParseFilter(string(cfg.Filter)); err != nil {
		return nil, err
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: negative depth limit %d", ErrInvalidInput, cfg.MaxDepth)
	}
	return &Builder{db: db, cfg: cfg}, nil
}

// NewFromDir builds the tile database from dir and wraps it in a Builder.
func NewFromDir(dir string, cfg Config) (*Builder, error) {
	db, err := tiledb.Build(dir)
	if err != nil {
		return nil, err
	}
	return New(db, cfg)
}

// Database returns the builder's tile database.
func (b *Builder) Database() *tiledb.Database {
	return b.db
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Create builds a photomosaic of img and keeps it as the current result.
//
// Every region is handled in this order:
//
//  1. If its width or height is below minSize, or it is too thin to halve,
//     the tile with the closest mean color is resized over it.
//  2. If threshold is non-nil and some tile is within *threshold of the
//     region (see tiledb.Database.BestExactMatch), that tile is resized over it.
//  3. Otherwise it is split into top-left, bottom-left, bottom-right and
//     top-right quadrants, each built the same way and pasted back.
//
// A nil threshold skips step 2 entirely. img is never modified; the result
// has the same dimensions.
//
// # Errors
//
//   - ErrInvalidInput if minSize <= 0, *threshold < 0 or img has no pixels.
//     Nothing is modified in that case and the previous result is kept.
//   - ErrRecursionLimitExceeded if subdivision exceeds the depth limit.
func (b *Builder) Create(img image.Image, minSize int, threshold *float64) (*image.NRGBA, error) {
	if minSize <= 0 {
		return nil, fmt.Errorf("%w: minimum size must be positive, got %d", ErrInvalidInput, minSize)
	}
	if threshold != nil && (*threshold < 0 || math.IsNaN(*threshold)) {
		return nil, fmt.Errorf("%w: threshold must be >= 0, got %v", ErrInvalidInput, *threshold)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	r := &run{
		db:        b.db,
		filter:    b.cfg.Filter,
		minSize:   minSize,
		threshold: threshold,
		maxDepth:  b.cfg.MaxDepth,
	}
	if r.maxDepth == 0 {
		r.maxDepth = DepthLimit(bounds.Dx(), bounds.Dy())
	}
	if b.cfg.Workers > 1 {
		r.sem = make(chan struct{}, b.cfg.Workers-1)
	}

	logger := log.WithFields(log.Fields{
		"size":      fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"min_size":  minSize,
		"tiles":     b.db.Len(),
		"max_depth": r.maxDepth,
	})
	if threshold != nil {
		logger = logger.WithField("threshold", *threshold)
	}
	logger.Debug("Creating mosaic")

	start := time.Now()
	result, err := r.build(imaging.Clone(img), 0)
	if err != nil {
		return nil, err
	}

	b.result = result
	b.stats = r.stats()
	b.stats.DepthLimit = r.maxDepth
	b.stats.Elapsed = time.Since(start)
	b.stats.ThresholdInUse = threshold != nil

	logger.WithFields(log.Fields{
		"regions":  b.stats.Regions,
		"closest":  b.stats.ClosestTiles,
		"exact":    b.stats.ExactTiles,
		"depth":    b.stats.MaxDepth,
		"duration": b.stats.Elapsed.Round(time.Millisecond),
	}).Info("Mosaic created")

	return result, nil
}

// Result returns the current mosaic, or nil if Create has not succeeded yet.
func (b *Builder) Result() *image.NRGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// Stats returns the counters of the last successful Create.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Export writes the current mosaic to path, choosing the format from the
// extension. Without a result it does nothing and returns nil.
func (b *Builder) Export(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.result == nil {
		log.WithField("path", path).Debug("No mosaic to export")
		return nil
	}
	if err := imaging.Save(b.result, path, imaging.SaveOptions{JPEGQuality: b.cfg.JPEGQuality}); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.WithField("path", path).Info("Mosaic exported")
	return nil
}

// DepthLimit is the deepest subdivision level a w x h image can need.
//
// Quadrant sides are at most ceil(side/2), and a region thinner than two
// pixels is never split, so the smallest side reaches 1 after
// ceil(log2(min(w,h))) levels. One extra level is allowed as a margin.
func DepthLimit(w, h int) int {
	side := w
	if h < side {
		side = h
	}
	if side < 1 {
		side = 1
	}
	return bits.Len(uint(side)) + 1
}
