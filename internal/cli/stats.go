package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/mosaic-tools-mcp/internal/tiledb"
)

func newStatsCmd() *cobra.Command {
	var tiles string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "List the tiles of a directory with their mean colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := tiledb.Build(tiles)
			if err != nil {
				return fmt.Errorf("tiles: %w", err)
			}
			printStats(cmd.OutOrStdout(), db)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tiles, "tiles", "t", "", "directory of tile images (required)")
	_ = cmd.MarkFlagRequired("tiles")
	return cmd
}

func printStats(w io.Writer, db *tiledb.Database) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %4s  %-16s  %-7s  %-24s  %9s  %s\n", "ID", "HASH", "HEX", "MEAN", "SIZE", "FILE")
	for _, t := range db.Tiles() {
		fmt.Fprintf(w, "  %4d  %-16s  %-7s  %-24s  %9s  %s\n",
			t.ID,
			t.Hash,
			t.Mean.Hex(),
			t.Mean,
			fmt.Sprintf("%dx%d", t.Width, t.Height),
			filepath.Base(t.Name()),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total tiles:  %d\n", db.Len())

	if dups := db.Duplicates(); len(dups) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Duplicates (%d):\n", len(dups))
		for _, group := range dups {
			fmt.Fprintf(w, "    ⚠ identical content: %v\n", group)
		}
	}
	fmt.Fprintln(w)
}
