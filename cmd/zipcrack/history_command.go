package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipcrack/internal/history"
)

type runJSON struct {
	ID          string     `json:"id"`
	Archive     string     `json:"archive"`
	SHA256      string     `json:"archive_sha256,omitempty"`
	Alphabet    string     `json:"alphabet"`
	Length      int        `json:"length"`
	Workers     int        `json:"workers"`
	Status      string     `json:"status"`
	Attempts    int64      `json:"attempts"`
	Corrupt     int64      `json:"corrupt"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	ElapsedSecs float64    `json:"elapsed_seconds"`
	Error       string     `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crack runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
				if jsonOut {
					return writeJSON(cmd, []runJSON{})
				}
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				items := make([]runJSON, 0, len(runs))
				for _, run := range runs {
					items = append(items, toRunJSON(run))
				}
				return writeJSON(cmd, items)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output runs as JSON")
	return cmd
}

func renderHistoryTable(runs []history.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			filepath.Base(run.Archive),
			fmt.Sprintf("%d^%d", len([]rune(run.Alphabet)), run.Length),
			string(run.Status),
			humanize.Comma(run.Attempts),
			formatElapsed(run),
		})
	}
	spec := tableSpec{
		headers: []string{"Run", "Started", "Archive", "Keyspace", "Status", "Attempts", "Elapsed"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
	}
	return spec.render(rows)
}

func formatElapsed(run history.Run) string {
	if !run.Status.IsTerminal() {
		return "running"
	}
	return run.Elapsed.Round(time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func toRunJSON(run history.Run) runJSON {
	item := runJSON{
		ID:          run.ID,
		Archive:     run.Archive,
		SHA256:      run.ArchiveSHA256,
		Alphabet:    run.Alphabet,
		Length:      run.Length,
		Workers:     run.Workers,
		Status:      string(run.Status),
		Attempts:    run.Attempts,
		Corrupt:     run.Corrupt,
		StartedAt:   run.StartedAt,
		ElapsedSecs: run.Elapsed.Seconds(),
		Error:       run.ErrorMessage,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		item.FinishedAt = &finished
	}
	return item
}
