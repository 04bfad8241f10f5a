package tiledb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
)

// ScanDir lists the image files directly inside dir, in lexical order.
//
// Subdirectories and hidden files are skipped, as are files whose extension
// is not a recognised image format; those are logged at debug level. The
// returned paths are joined with dir.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !imaging.IsImageFile(name) {
			log.WithFields(log.Fields{"dir": dir, "file": name}).Debug("Skipping file without an image extension")
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
