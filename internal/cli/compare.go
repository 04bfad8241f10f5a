package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
)

type compareOptions struct {
	threshold float64
	filter    string
	diff      string
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare <image> <candidate>",
		Short: "Measure how closely one image reproduces another",
		Long: `Resizes <candidate> to the size of <image> and prints the mean
per-pixel RGB distance between them, the distance between their mean
colors and, with --threshold, whether build would accept <candidate> as
an exact match for <image>.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var threshold *float64
			if cmd.Flags().Changed("threshold") {
				threshold = &opts.threshold
			}
			return runCompare(cmd.OutOrStdout(), args[0], args[1], opts, threshold)
		},
	}

	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "report whether the distance is at most this")
	cmd.Flags().StringVar(&opts.filter, "filter", string(imaging.DefaultFilter), "resampling filter for the candidate")
	cmd.Flags().StringVar(&opts.diff, "diff", "", "also write the per-pixel difference image to this file")
	return cmd
}

func runCompare(w io.Writer, refPath, candPath string, opts *compareOptions, threshold *float64) error {
	filter, err := imaging.ParseFilter(opts.filter)
	if err != nil {
		return err
	}

	ref, err := imaging.Load(refPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", refPath, err)
	}
	cand, err := imaging.Load(candPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", candPath, err)
	}

	var (
		dist    float64
		matched bool
	)
	if threshold != nil {
		dist, matched, err = imaging.PixelDifference(ref, cand, *threshold, filter)
	} else {
		dist, err = imaging.MeanPixelDistance(ref, cand, filter)
	}
	if err != nil {
		return err
	}

	refMean, err := imaging.MeanColor(ref)
	if err != nil {
		return err
	}
	candMean, err := imaging.MeanColor(cand)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Image:          %s  %s %s\n", refPath, refMean.Hex(), refMean)
	fmt.Fprintf(w, "  Candidate:      %s  %s %s\n", candPath, candMean.Hex(), candMean)
	fmt.Fprintf(w, "  Pixel distance: %.4f\n", dist)
	fmt.Fprintf(w, "  Mean distance:  %.4f\n", imaging.ColorDistance(refMean, candMean))
	if threshold != nil {
		verdict := "no match"
		if matched {
			verdict = "match"
		}
		fmt.Fprintf(w, "  Threshold:      %.4f (%s)\n", *threshold, verdict)
	}

	if opts.diff != "" {
		diff, err := imaging.DifferenceImage(ref, cand, filter)
		if err != nil {
			return err
		}
		if err := imaging.Save(diff, opts.diff, imaging.SaveOptions{}); err != nil {
			return err
		}
		fmt.Fprintf(w, "  Difference:     %s\n", opts.diff)
	}
	fmt.Fprintln(w)
	return nil
}
