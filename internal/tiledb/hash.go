package tiledb

import (
	"encoding/hex"
	"fmt"
	"image"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ContentHash is the xxHash64 digest of a tile's source bytes.
type ContentHash uint64

// String returns the digest as 16 hex characters.
func (h ContentHash) String() string {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(uint64(h) >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// MarshalText implements encoding.TextMarshaler so hashes render as hex in JSON.
func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses the hex form written by MarshalText.
func (h *ContentHash) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid content hash %q: %w", text, err)
	}
	*h = ContentHash(v)
	return nil
}

// hashBytes digests raw file contents.
func hashBytes(data []byte) ContentHash {
	return ContentHash(xxhash.Sum64(data))
}

// hashPixels digests decoded pixels for tiles that never had a file. The
// bounds are mixed in so that equal bytes at different sizes differ.
func hashPixels(img *image.NRGBA) ContentHash {
	d := xxhash.New()
	b := img.Bounds()
	var dims [8]byte
	for i, v := range []int{b.Dx(), b.Dy()} {
		dims[i*4] = byte(v >> 24)
		dims[i*4+1] = byte(v >> 16)
		dims[i*4+2] = byte(v >> 8)
		dims[i*4+3] = byte(v)
	}
	_, _ = d.Write(dims[:])
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		_, _ = d.Write(row)
	}
	return ContentHash(d.Sum64())
}

