package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// LogLevelEnv names the environment variable consulted when --log-level is
// not given.
const LogLevelEnv = "MOSAIC_LOG_LEVEL"

type rootOptions struct {
	verbose  bool
	logLevel string
}

// NewRootCommand assembles the mosaic command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mosaic",
		Short: "Build photomosaics from a directory of tile images",
		Long: `mosaic rebuilds an image out of smaller tile images.

Each region of the source is replaced by the tile whose mean color is
closest to it. Regions larger than the minimum size are split into
quadrants until they are small enough, or, when a threshold is given,
until some tile reproduces the region closely enough on its own.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.configureLogging(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: panic, fatal, error, warn, info, debug, trace (default $"+LogLevelEnv+" or warn)")
	cmd.SetVersionTemplate(fmt.Sprintf(
		"mosaic %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	cmd.AddCommand(newBuildCmd(), newStatsCmd(), newCompareCmd())
	return cmd
}

// Execute runs the command tree against os.Args.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// configureLogging routes logrus to w at the level chosen by --log-level,
// then $MOSAIC_LOG_LEVEL, then --verbose (debug), defaulting to warn.
func (o *rootOptions) configureLogging(w io.Writer) error {
	name := o.logLevel
	if name == "" {
		name = os.Getenv(LogLevelEnv)
	}

	level := log.WarnLevel
	switch {
	case name != "":
		parsed, err := log.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", name, err)
		}
		level = parsed
	case o.verbose:
		level = log.DebugLevel
	}

	log.SetOutput(w)
	log.SetLevel(level)
	return nil
}
