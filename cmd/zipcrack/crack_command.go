package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"zipcrack/internal/config"
	"zipcrack/internal/crackrun"
	"zipcrack/internal/keyspace"
)

// errPasswordNotFound makes the process exit 1 after the report was printed.
var errPasswordNotFound = errors.New("password not found")

type crackFlags struct {
	output         string
	alphabet       string
	length         int
	workers        int
	pollInterval   time.Duration
	joinTimeout    time.Duration
	extractDir     string
	abortOnCorrupt bool
	json           bool
}

type crackJSON struct {
	RunID        string  `json:"run_id"`
	Archive      string  `json:"archive"`
	Found        bool    `json:"found"`
	Password     string  `json:"password,omitempty"`
	OutputPath   string  `json:"output_path,omitempty"`
	OutputError  string  `json:"output_error,omitempty"`
	Combinations string  `json:"combinations"`
	Attempts     int64   `json:"attempts"`
	Corrupt      int64   `json:"corrupt"`
	Workers      int     `json:"workers"`
	Stragglers   int     `json:"stragglers"`
	ElapsedSecs  float64 `json:"elapsed_seconds"`
	Extracted    int     `json:"extracted,omitempty"`
	ExtractError string  `json:"extract_error,omitempty"`
	LogPath      string  `json:"log_path,omitempty"`
}

func newCrackCommand(ctx *commandContext) *cobra.Command {
	var flags crackFlags

	cmd := &cobra.Command{
		Use:   "crack [ARCHIVE]",
		Short: "Search the keyspace for the archive password",
		Long: fmt.Sprintf(`Brute-force the password of an encrypted ZIP archive.

The archive defaults to %s in the current directory. On success the password
is written verbatim to the output file and the command exits 0; otherwise it
exits 1.`, crackrun.DefaultArchive),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyCrackFlags(cmd, base, flags)
			if err != nil {
				return err
			}

			archive := crackrun.DefaultArchive
			if len(args) == 1 {
				archive = args[0]
			}

			out := cmd.OutOrStdout()
			if !flags.json {
				printCrackStart(out, cfg, archive)
			}

			report, runErr := crackrun.Run(cmd.Context(), cfg, crackrun.Options{Archive: archive})

			if flags.json {
				if err := writeJSON(cmd, toCrackJSON(report)); err != nil {
					return err
				}
			} else {
				printCrackResult(out, report, runErr, shouldColorize(out))
			}

			if runErr != nil {
				return runErr
			}
			if !report.Found {
				return errPasswordNotFound
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "File that receives the recovered password")
	cmd.Flags().StringVar(&flags.alphabet, "alphabet", "", "Symbols tried at every position")
	cmd.Flags().IntVarP(&flags.length, "length", "l", 0, "Password length")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", -1, "Parallel workers (0 = all CPUs)")
	cmd.Flags().DurationVar(&flags.pollInterval, "poll-interval", 0, "Bounded wait per result channel read")
	cmd.Flags().DurationVar(&flags.joinTimeout, "join-timeout", 0, "Per-worker bound when joining at shutdown")
	cmd.Flags().StringVar(&flags.extractDir, "extract-dir", "", "Extract the archive here after the password is found")
	cmd.Flags().BoolVar(&flags.abortOnCorrupt, "abort-on-corrupt", false, "Stop the search when the archive looks corrupt")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output the run report as JSON")

	return cmd
}

// applyCrackFlags returns a copy of base with the changed flags applied,
// normalized and validated.
func applyCrackFlags(cmd *cobra.Command, base *config.Config, flags crackFlags) (*config.Config, error) {
	cfg := *base
	changed := cmd.Flags().Changed

	if changed("output") {
		cfg.Search.OutputFile = flags.output
	}
	if changed("alphabet") {
		cfg.Search.Alphabet = flags.alphabet
	}
	if changed("length") {
		cfg.Search.Length = flags.length
	}
	if changed("workers") {
		cfg.Search.Workers = flags.workers
	}
	if changed("poll-interval") {
		ms, err := flagMillis("poll-interval", flags.pollInterval)
		if err != nil {
			return nil, err
		}
		cfg.Search.PollIntervalMS = ms
	}
	if changed("join-timeout") {
		ms, err := flagMillis("join-timeout", flags.joinTimeout)
		if err != nil {
			return nil, err
		}
		cfg.Search.JoinTimeoutMS = ms
	}
	if changed("extract-dir") {
		cfg.Search.ExtractDir = flags.extractDir
	}
	if changed("abort-on-corrupt") {
		cfg.Search.AbortOnCorrupt = flags.abortOnCorrupt
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return &cfg, nil
}

// flagMillis converts a positive duration flag to whole milliseconds,
// rounding up so sub-millisecond values stay non-zero.
func flagMillis(name string, d time.Duration) (int, error) {
	if d <= 0 {
		return 0, fmt.Errorf("invalid flags: --%s must be positive, got %s", name, d)
	}
	return int((d + time.Millisecond - 1) / time.Millisecond), nil
}

func printCrackStart(out io.Writer, cfg *config.Config, archive string) {
	alphabetLen := len([]rune(cfg.Search.Alphabet))
	combos := keyspace.Size(alphabetLen, cfg.Search.Length)
	fmt.Fprintf(out, "Started:      %s\n", time.Now().Format(time.DateTime))
	fmt.Fprintf(out, "Archive:      %s\n", archive)
	fmt.Fprintf(out, "Keyspace:     %s combinations (%d symbols, length %d)\n",
		keyspace.FormatCount(combos), alphabetLen, cfg.Search.Length)
	fmt.Fprintf(out, "Workers:      %d\n", min(cfg.WorkerCount(), alphabetLen))
}

func printCrackResult(out io.Writer, report crackrun.Report, runErr error, colorize bool) {
	if lines := preflightLines(report.Preflight, colorize); len(lines) > 0 {
		for _, line := range renderSectionHeader("Preflight", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	}
	if runErr != nil && report.WorkersLaunched == 0 {
		return
	}

	elapsed := report.Elapsed.Round(time.Millisecond)
	switch {
	case report.Found:
		fmt.Fprintln(out, renderStatusLine("Password", statusOK, report.Password, colorize))
		if report.OutputErr != nil {
			fmt.Fprintln(out, renderStatusLine("Output", statusWarn, report.OutputErr.Error(), colorize))
		} else {
			fmt.Fprintln(out, renderStatusLine("Output", statusInfo, report.OutputPath, colorize))
		}
		if report.ExtractDir != "" {
			if report.ExtractErr != nil {
				fmt.Fprintln(out, renderStatusLine("Extract", statusWarn, report.ExtractErr.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Extract", statusInfo,
					fmt.Sprintf("%d files to %s", report.Extracted, report.ExtractDir), colorize))
			}
		}
	case runErr != nil:
		fmt.Fprintln(out, renderStatusLine("Password", statusError, "search stopped: "+runErr.Error(), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Password", statusError, "not found", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, elapsed.String(), colorize))
	fmt.Fprintln(out, renderStatusLine("Attempts", statusInfo, keyspace.FormatCount(big.NewInt(report.Attempts)), colorize))
	if report.Corrupt > 0 {
		fmt.Fprintln(out, renderStatusLine("Corrupt outcomes", statusWarn, fmt.Sprintf("%d", report.Corrupt), colorize))
	}
	if report.Stragglers > 0 {
		fmt.Fprintln(out, renderStatusLine("Stragglers", statusWarn,
			fmt.Sprintf("%d workers did not stop in time", report.Stragglers), colorize))
	}
}

func toCrackJSON(report crackrun.Report) crackJSON {
	out := crackJSON{
		RunID:       report.RunID,
		Archive:     report.Archive,
		Found:       report.Found,
		Password:    report.Password,
		Attempts:    report.Attempts,
		Corrupt:     report.Corrupt,
		Workers:     report.WorkersLaunched,
		Stragglers:  report.Stragglers,
		ElapsedSecs: report.Elapsed.Seconds(),
		Extracted:   report.Extracted,
		LogPath:     report.LogPath,
	}
	if report.Combinations != nil {
		out.Combinations = report.Combinations.String()
	}
	if report.Found {
		if report.OutputErr != nil {
			out.OutputError = report.OutputErr.Error()
		} else {
			out.OutputPath = filepath.Clean(report.OutputPath)
		}
	}
	if report.ExtractErr != nil {
		out.ExtractError = report.ExtractErr.Error()
	}
	return out
}
