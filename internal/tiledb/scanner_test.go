package tiledb

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestScanDir_LogsSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a_red.png", solid(4, 4, color.RGBA{255, 0, 0, 255}))
	// A PNG without an extension is not picked up, but should show in the log.
	writePNG(t, dir, "no_extension", solid(4, 4, color.RGBA{0, 255, 0, 255}))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("tiles"), 0o644); err != nil {
		t.Fatal(err)
	}

	hook := test.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		hook.Reset()
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
		log.SetLevel(level)
	})

	paths, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir failed: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "a_red.png" {
		t.Fatalf("paths: got %v, want only a_red.png", paths)
	}

	skipped := map[string]bool{}
	for _, e := range hook.AllEntries() {
		if e.Level == log.DebugLevel {
			if name, ok := e.Data["file"].(string); ok {
				skipped[name] = true
			}
		}
	}
	for _, name := range []string{"no_extension", "notes.txt"} {
		if !skipped[name] {
			t.Errorf("skipped file %s was not logged (entries: %d)", name, len(hook.AllEntries()))
		}
	}
	if skipped["a_red.png"] {
		t.Error("tile file logged as skipped")
	}
}
