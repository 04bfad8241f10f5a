package tiledb

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
)

var (
	// ErrDatabaseEmpty is returned when a build finds no tile images.
	ErrDatabaseEmpty = errors.New("tile database is empty")

	// ErrUnreadableImage matches every *UnreadableImageError.
	ErrUnreadableImage = errors.New("unreadable image")
)

// UnreadableImageError reports a tile that could not be read or decoded.
// A single unreadable tile aborts the whole build.
type UnreadableImageError struct {
	Path string
	Err  error
}

func (e *UnreadableImageError) Error() string {
	return fmt.Sprintf("unreadable image %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O or decode error.
func (e *UnreadableImageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnreadableImage) hold.
func (e *UnreadableImageError) Is(target error) bool { return target == ErrUnreadableImage }

// TileID identifies a tile by its position in build order.
type TileID int

// Tile is one reference image and its precomputed statistics.
type Tile struct {
	ID     TileID              `json:"id"`
	Path   string              `json:"path,omitempty"` // Empty for in-memory tiles
	Hash   ContentHash         `json:"hash"`
	Mean   imaging.ColorTriple `json:"mean"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`

	// Image is the decoded tile. It must not be modified.
	Image *image.NRGBA `json:"-"`
}

// Name returns the tile's path, or "#<id>" for in-memory tiles.
func (t *Tile) Name() string {
	if t.Path != "" {
		return t.Path
	}
	return fmt.Sprintf("#%d", t.ID)
}

// Database is an immutable, ordered collection of tiles.
type Database struct {
	tiles []*Tile
}

// Build loads every image file directly inside dir into a new Database.
//
// Files are read in lexical order (see ScanDir), which fixes the tie-break
// order of the matchers.
//
// # Errors
//
//   - ErrDatabaseEmpty if dir contains no image files.
//   - *UnreadableImageError (matching ErrUnreadableImage) for the first file
//     that cannot be read or decoded. No partial database is returned.
//   - The scan error if dir itself cannot be listed.
func Build(dir string) (*Database, error) {
	paths, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrDatabaseEmpty, dir)
	}

	db := &Database{tiles: make([]*Tile, 0, len(paths))}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &UnreadableImageError{Path: path, Err: err}
		}
		img, _, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &UnreadableImageError{Path: path, Err: err}
		}
		tile, err := db.add(img, hashBytes(data))
		if err != nil {
			return nil, &UnreadableImageError{Path: path, Err: err}
		}
		tile.Path = path

		log.WithFields(log.Fields{
			"tile": tile.ID,
			"path": path,
			"size": fmt.Sprintf("%dx%d", tile.Width, tile.Height),
			"mean": tile.Mean.Hex(),
		}).Debug("Loaded tile")
	}

	db.warnDuplicates()
	log.WithFields(log.Fields{
		"dir":   dir,
		"tiles": len(db.tiles),
	}).Info("Tile database built")

	return db, nil
}

// FromImages builds a Database from in-memory images, in argument order.
//
// # Errors
//
//   - ErrDatabaseEmpty if no images are given.
//   - An error wrapping imaging.ErrInvalidInput if an image has no pixels.
func FromImages(images ...image.Image) (*Database, error) {
	if len(images) == 0 {
		return nil, ErrDatabaseEmpty
	}

	db := &Database{tiles: make([]*Tile, 0, len(images))}
	for i, img := range images {
		if _, err := db.add(img, 0); err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
	}
	db.warnDuplicates()
	return db, nil
}

// add computes the statistics of img and appends it as the next tile. A zero
// hash is replaced by a digest of the decoded pixels.
func (db *Database) add(img image.Image, hash ContentHash) (*Tile, error) {
	mean, err := imaging.MeanColor(img)
	if err != nil {
		return nil, err
	}

	owned := imaging.Clone(img)
	if hash == 0 {
		hash = hashPixels(owned)
	}

	tile := &Tile{
		ID:     TileID(len(db.tiles)),
		Hash:   hash,
		Mean:   mean,
		Width:  owned.Bounds().Dx(),
		Height: owned.Bounds().Dy(),
		Image:  owned,
	}
	db.tiles = append(db.tiles, tile)
	return tile, nil
}

func (db *Database) warnDuplicates() {
	for _, group := range db.Duplicates() {
		names := make([]string, len(group))
		for i, id := range group {
			names[i] = db.tiles[id].Name()
		}
		log.WithFields(log.Fields{
			"hash":  db.tiles[group[0]].Hash.String(),
			"tiles": names,
		}).Warn("Duplicate tile content")
	}
}

// Len returns the number of tiles. It is always at least 1.
func (db *Database) Len() int {
	return len(db.tiles)
}

// Tiles returns the tiles in build order. The slice must not be modified.
func (db *Database) Tiles() []*Tile {
	return db.tiles
}

// Tile returns the tile with the given id, or nil if there is none.
func (db *Database) Tile(id TileID) *Tile {
	if id < 0 || int(id) >= len(db.tiles) {
		return nil
	}
	return db.tiles[id]
}

// Duplicates groups tiles that share a content hash. Groups and the ids
// within them are in build order; tiles with unique content are omitted.
func (db *Database) Duplicates() [][]TileID {
	byHash := make(map[ContentHash][]TileID)
	var order []ContentHash
	for _, t := range db.tiles {
		if _, seen := byHash[t.Hash]; !seen {
			order = append(order, t.Hash)
		}
		byHash[t.Hash] = append(byHash[t.Hash], t.ID)
	}

	var groups [][]TileID
	for _, h := range order {
		if ids := byHash[h]; len(ids) > 1 {
			groups = append(groups, ids)
		}
	}
	return groups
}
