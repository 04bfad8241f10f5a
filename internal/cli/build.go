package cli

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
	"github.com/ironsheep/mosaic-tools-mcp/internal/mosaic"
)

type buildOptions struct {
	tiles     string
	minSize   int
	threshold float64
	out       string
	filter    string
	workers   int
	maxDepth  int
	quality   int
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build <image>",
		Short: "Build a photomosaic of an image",
		Long: `Scans the tiles directory (png, jpg, jpeg, gif, bmp, tif, tiff, webp;
not recursive), computes every tile's mean color and rebuilds <image>
from the tiles.

Without --threshold every region at least --min-size pixels wide and
high is split into quadrants. With --threshold a region is first
compared pixel by pixel against every tile and kept whole when the best
tile's mean difference is at most the threshold.

The output format follows the extension of --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var threshold *float64
			if cmd.Flags().Changed("threshold") {
				threshold = &opts.threshold
			}
			return runBuild(cmd.OutOrStdout(), args[0], opts, threshold)
		},
	}

	cmd.Flags().StringVarP(&opts.tiles, "tiles", "t", "", "directory of tile images (required)")
	cmd.Flags().IntVarP(&opts.minSize, "min-size", "m", 16, "regions narrower or shorter than this are not subdivided")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "accept a tile for a whole region when its mean pixel difference is at most this")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "mosaic.png", "output file")
	cmd.Flags().StringVar(&opts.filter, "filter", string(imaging.DefaultFilter), "resampling filter: nearest, box, linear, catmullrom, lanczos")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "quadrant subtrees built in parallel (0 = NumCPU)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "subdivision depth limit (0 = derived from image size)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", 95, "JPEG quality 1-100")
	_ = cmd.MarkFlagRequired("tiles")

	return cmd
}

func runBuild(w io.Writer, input string, opts *buildOptions, threshold *float64) error {
	start := time.Now()

	filter, err := imaging.ParseFilter(opts.filter)
	if err != nil {
		return err
	}
	workers := opts.workers
	if workers == 0 {
		workers = -1
	}

	src, err := imaging.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	log.WithField("dir", opts.tiles).Debug("Loading tiles")
	b, err := mosaic.NewFromDir(opts.tiles, mosaic.Config{
		Filter:      filter,
		Workers:     workers,
		MaxDepth:    opts.maxDepth,
		JPEGQuality: opts.quality,
	})
	if err != nil {
		return fmt.Errorf("tiles: %w", err)
	}

	result, err := b.Create(src, opts.minSize, threshold)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := b.Export(opts.out); err != nil {
		return err
	}

	printBuildReport(w, b, result.Bounds().Dx(), result.Bounds().Dy(), opts.out, time.Since(start))
	return nil
}

func printBuildReport(w io.Writer, b *mosaic.Builder, width, height int, out string, elapsed time.Duration) {
	stats := b.Stats()
	cfg := b.Config()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Output:       %s (%dx%d)\n", out, width, height)
	fmt.Fprintf(w, "  Tiles:        %d\n", b.Database().Len())
	fmt.Fprintf(w, "  Regions:      %d\n", stats.Regions)
	fmt.Fprintf(w, "  Mean color:   %d tiles\n", stats.ClosestTiles)
	if stats.ThresholdInUse {
		fmt.Fprintf(w, "  Exact match:  %d tiles\n", stats.ExactTiles)
	}
	fmt.Fprintf(w, "  Subdivided:   %d regions\n", stats.Subdivisions)
	fmt.Fprintf(w, "  Depth:        %d (limit %d)\n", stats.MaxDepth, stats.DepthLimit)
	fmt.Fprintf(w, "  Filter:       %s\n", cfg.Filter)
	fmt.Fprintf(w, "  Workers:      %d\n", cfg.Workers)
	fmt.Fprintf(w, "  Time:         %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w)
}
