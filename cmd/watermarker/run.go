package main

import (
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/model"
	"github.com/aliskhannn/watermarker/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run WATERMARK INPUT...",
		Short: "Process one batch of files and directories",
		Example: `  watermarker run logo.png photo.jpg
  watermarker run logo.png photos/ --width 800 -f webp -t out
  watermarker run logo.png archive/ -r -j 4 --report report.yaml`,
		Args: cobra.MinimumNArgs(2),
		RunE: runBatch,
	}

	addBatchFlags(cmd.Flags())
	cmd.Flags().String("report", "", "write a JSON or YAML report to this file")

	return cmd
}

// runBatch processes args[1:] with the watermark args[0]. It exits with
// exitFailures when any input or job failed.
func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Watermark = args[0]

	noColor, _ := cmd.Flags().GetBool("no-color")
	printer := report.NewPrinter(cmd.OutOrStdout(), noColor)

	a, err := newApp(ctx, cfg, printer)
	if err != nil {
		return configurationFailure(err)
	}
	defer a.Close()

	rep, err := a.service.Run(ctx, model.BatchRequest{Inputs: args[1:]})
	if err != nil {
		return configurationFailure(err)
	}

	printer.Summary(rep)

	if cfg.Output.Report != "" {
		if err := report.WriteFile(cfg.Output.Report, rep); err != nil {
			zlog.Logger.Err(err).Str("path", cfg.Output.Report).Msg("failed to write report")
			return &exitError{code: exitFailures, err: err}
		}
	}

	if !rep.OK() {
		return &exitError{code: exitFailures}
	}

	return nil
}
