package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"zipcrack/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "logs [RUN_ID]",
		Short: "Show the log of a crack run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			runLog, err := logs.Locate(cfg.Paths.LogDir, prefix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			emit := func(batch []string) {
				for _, line := range batch {
					if !raw {
						line = logs.Format(line)
					}
					fmt.Fprintln(out, line)
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			result, err := logs.Tail(runCtx, runLog.Path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			emit(result.Lines)

			for follow {
				result, err = logs.Tail(runCtx, runLog.Path, logs.TailOptions{
					Offset: result.Offset,
					Follow: true,
					Wait:   time.Second,
				})
				if runCtx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				emit(result.Lines)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show (0 = none)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	return cmd
}
