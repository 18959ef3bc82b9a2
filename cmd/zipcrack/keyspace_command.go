package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zipcrack/internal/config"
	"zipcrack/internal/keyspace"
)

type partitionJSON struct {
	Worker     int    `json:"worker"`
	First      string `json:"first_symbols"`
	Candidates string `json:"candidates"`
}

type keyspaceJSON struct {
	Alphabet     string          `json:"alphabet"`
	Length       int             `json:"length"`
	Combinations string          `json:"combinations"`
	Requested    int             `json:"workers_requested"`
	Launched     int             `json:"workers_launched"`
	Partitions   []partitionJSON `json:"partitions"`
}

func newKeyspaceCommand(ctx *commandContext) *cobra.Command {
	var (
		alphabetFlag string
		lengthFlag   int
		workersFlag  int
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "keyspace",
		Short: "Show keyspace size and the per-worker partition plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			symbols := cfg.Search.Alphabet
			if cmd.Flags().Changed("alphabet") {
				symbols = config.NormalizeAlphabet(alphabetFlag)
			}
			length := cfg.Search.Length
			if cmd.Flags().Changed("length") {
				length = lengthFlag
			}
			workers := cfg.WorkerCount()
			if cmd.Flags().Changed("workers") && workersFlag > 0 {
				workers = workersFlag
			}

			alphabet, err := keyspace.NewAlphabet(symbols)
			if err != nil {
				return err
			}
			if length < 1 {
				return fmt.Errorf("length must be at least 1")
			}

			plan := buildKeyspacePlan(alphabet, length, workers)
			if jsonOut {
				return writeJSON(cmd, plan)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Alphabet:     %s (%d symbols)\n", alphabet, alphabet.Len())
			fmt.Fprintf(out, "Length:       %d\n", length)
			fmt.Fprintf(out, "Combinations: %s\n", plan.Combinations)
			fmt.Fprintf(out, "Workers:      %d launched of %d requested\n", plan.Launched, plan.Requested)

			rows := make([][]string, 0, len(plan.Partitions))
			for _, p := range plan.Partitions {
				rows = append(rows, []string{strconv.Itoa(p.Worker), p.First, p.Candidates})
			}
			spec := tableSpec{
				headers: []string{"Worker", "First symbols", "Candidates"},
				aligns:  []columnAlignment{alignRight, alignLeft, alignRight},
				footer:  []string{"", "total", plan.Combinations},
			}
			fmt.Fprintln(out, spec.render(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&alphabetFlag, "alphabet", "", "Symbols tried at every position")
	cmd.Flags().IntVarP(&lengthFlag, "length", "l", 0, "Password length")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Parallel workers (0 = all CPUs)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the plan as JSON")
	return cmd
}

func buildKeyspacePlan(alphabet keyspace.Alphabet, length, workers int) keyspaceJSON {
	parts := keyspace.NonEmpty(keyspace.Split(alphabet, workers))
	plan := keyspaceJSON{
		Alphabet:     alphabet.String(),
		Length:       length,
		Combinations: keyspace.FormatCount(keyspace.Size(alphabet.Len(), length)),
		Requested:    max(1, workers),
		Launched:     len(parts),
		Partitions:   make([]partitionJSON, 0, len(parts)),
	}
	for _, p := range parts {
		plan.Partitions = append(plan.Partitions, partitionJSON{
			Worker:     p.Index,
			First:      string(p.First),
			Candidates: keyspace.FormatCount(p.Size(alphabet.Len(), length)),
		})
	}
	return plan
}
