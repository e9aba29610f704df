package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watermarker WATERMARK INPUT...",
		Short: "Stamp a watermark onto batches of images",
		Long: `Applies an overlay image to every input image, optionally resizing and
converting it, and writes the results to a target directory.

Inputs may be files or directories. Without a subcommand, the arguments are
processed as a single batch, like "watermarker run".`,
		Version:       version,
		Args:          cobra.MinimumNArgs(2),
		RunE:          runBatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("no-color", false, "disable colored output")

	addBatchFlags(root.Flags())
	root.Flags().String("report", "", "write a JSON or YAML report to this file")

	root.AddCommand(newRunCmd(), newConsumeCmd(), newServeCmd())

	return root
}

// addBatchFlags registers the flags shared by every command that runs batches.
func addBatchFlags(fs *pflag.FlagSet) {
	fs.StringP("target-path", "t", "./output", "output directory, created if absent")
	fs.StringP("format", "f", "", "output format: png, jpg, jpeg, webp, bmp, tiff (default: inferred from input)")
	fs.Int("width", 0, "output width in pixels")
	fs.Int("height", 0, "output height in pixels")
	fs.Int("jpeg-quality", 95, "JPEG quality, 1-100")
	fs.BoolP("recursive", "r", false, "descend into nested directories")
	fs.IntP("concurrency", "j", 0, "max images processed at once (default: number of CPUs)")
	fs.Int("retry-attempts", 1, "attempts per output write")
}

// loadConfig builds the configuration for cmd and initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, configurationFailure(err)
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, configurationFailure(err)
	}

	// Initialize logger.
	zlog.Init()
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, configurationFailure(fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err))
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, configurationFailure(err)
	}

	return cfg, nil
}
