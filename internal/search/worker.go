package search

import (
	"context"
	"log/slog"
	"sync/atomic"

	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/probe"
)

// WorkerStats summarizes one worker's run.
type WorkerStats struct {
	Index    int
	Attempts int64
	Corrupt  int64
	// Found is set on the worker that published the password.
	Found bool
	// Aborted is set when the worker stopped the run on a corrupt outcome.
	Aborted bool
	LastErr error
}

// Worker searches one partition of the keyspace.
type Worker struct {
	Index          int
	Partition      keyspace.Partition
	Alphabet       keyspace.Alphabet
	Length         int
	Stop           *StopSignal
	Results        *ResultChannel
	Prober         probe.Prober
	AbortOnCorrupt bool
	Logger         *slog.Logger

	attempts atomic.Int64
	corrupt  atomic.Int64
}

// Attempts returns the number of probes made so far. Safe to call while the
// worker runs.
func (w *Worker) Attempts() int64 { return w.attempts.Load() }

// CorruptCount returns the number of Corrupt outcomes seen so far.
func (w *Worker) CorruptCount() int64 { return w.corrupt.Load() }

// Run probes every candidate of the partition until the password is found,
// the stop signal is raised, or ctx ends. WrongPassword and Corrupt outcomes
// continue the search unless AbortOnCorrupt is set.
func (w *Worker) Run(ctx context.Context) (stats WorkerStats) {
	logger := w.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	stats = WorkerStats{Index: w.Index}
	defer func() {
		stats.Attempts = w.attempts.Load()
		stats.Corrupt = w.corrupt.Load()
	}()

	stopped := func() bool {
		return w.Stop.IsSet() || ctx.Err() != nil
	}
	gen := keyspace.Generator{First: w.Partition.First, Alphabet: w.Alphabet, Length: w.Length}

	for candidate := range gen.Candidates(stopped) {
		if stopped() {
			break
		}
		res := w.Prober.Probe(ctx, []byte(candidate))
		w.attempts.Add(1)

		switch res.Outcome {
		case probe.Success:
			if !w.Stop.IsSet() {
				stats.Found = w.Results.Push(candidate)
				w.Stop.Set()
			}
			return stats
		case probe.Corrupt:
			if w.corrupt.Add(1) == 1 {
				logger.Debug("probe reported corrupt archive", logging.Error(res.Err))
			}
			stats.LastErr = res.Err
			if w.AbortOnCorrupt {
				stats.Aborted = true
				w.Stop.Set()
				return stats
			}
		}
	}
	return stats
}
