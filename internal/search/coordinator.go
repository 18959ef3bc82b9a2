package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/probe"
	"zipcrack/internal/services"
)

const (
	defaultPollInterval = time.Second
	defaultJoinTimeout  = time.Second
)

// Request describes one search.
type Request struct {
	Archive  string
	Alphabet keyspace.Alphabet
	Length   int
	// Workers below 1 selects runtime.NumCPU().
	Workers          int
	PollInterval     time.Duration
	JoinTimeout      time.Duration
	ProgressInterval time.Duration
	AbortOnCorrupt   bool

	// Opener defaults to probe.ZipOpener for Archive.
	Opener probe.Opener
	// Sink receives the password when found. Nil stores nothing.
	Sink Sink
}

// Report is the outcome of a search.
type Report struct {
	Found           bool
	Password        string
	Elapsed         time.Duration
	Attempts        int64
	Corrupt         int64
	WorkersLaunched int
	Stragglers      int
	// OutputErr is set when the Sink failed. The search itself still succeeded.
	OutputErr error
	Workers   []WorkerStats
}

// Coordinator runs searches.
type Coordinator struct {
	base   *slog.Logger
	logger *slog.Logger
	now    func() time.Time
}

// NewCoordinator returns a coordinator that logs through logger.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	base := logging.NewComponentLogger(logger, "search")
	return &Coordinator{base: base, logger: base, now: time.Now}
}

// scoped returns a copy whose logger carries the run fields found in ctx.
func (c *Coordinator) scoped(ctx context.Context) *Coordinator {
	return &Coordinator{base: c.base, logger: logging.WithContext(ctx, c.base), now: c.now}
}

type launched struct {
	worker *Worker
	done   chan struct{}
	stats  WorkerStats
}

// Run partitions the keyspace, launches one worker per non-empty partition
// and waits for a password, exhaustion, or ctx cancellation. A missing
// archive returns ErrTargetNotFound without launching anything. Cancellation
// of ctx returns the context error alongside the partial report.
func (c *Coordinator) Run(ctx context.Context, req Request) (Report, error) {
	c = c.scoped(ctx)
	start := c.now()
	report := Report{}
	elapsed := func() time.Duration { return c.now().Sub(start) }

	if err := checkArchive(req.Archive); err != nil {
		report.Elapsed = elapsed()
		return report, err
	}

	workers := req.Workers
	if workers < 1 {
		workers = max(1, runtime.NumCPU())
	}
	poll := durationOr(req.PollInterval, defaultPollInterval)
	join := durationOr(req.JoinTimeout, defaultJoinTimeout)
	opener := req.Opener
	if opener == nil {
		opener = probe.ZipOpener{Path: req.Archive}
	}

	parts := keyspace.NonEmpty(keyspace.Split(req.Alphabet, workers))
	stop := &StopSignal{}
	results := NewResultChannel(len(parts))

	probers := make([]probe.Prober, 0, len(parts))
	for _, part := range parts {
		p, err := opener.Open()
		if err != nil {
			for _, opened := range probers {
				_ = opened.Close()
			}
			report.Elapsed = elapsed()
			return report, services.Wrap(services.ErrValidation, "search", "open prober", fmt.Sprintf("partition %d", part.Index), err)
		}
		probers = append(probers, p)
	}

	c.logger.Info("search started",
		logging.String(logging.FieldEventType, "search_started"),
		logging.String("archive", req.Archive),
		logging.Int("alphabet_size", req.Alphabet.Len()),
		logging.Int("length", req.Length),
		logging.Int("workers", len(parts)),
		logging.String("combinations", keyspace.Size(req.Alphabet.Len(), req.Length).String()),
	)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var group errgroup.Group
	running := make([]*launched, len(parts))
	for i, part := range parts {
		wctx := services.WithWorker(workerCtx, part.Index)
		w := &Worker{
			Index:          part.Index,
			Partition:      part,
			Alphabet:       req.Alphabet,
			Length:         req.Length,
			Stop:           stop,
			Results:        results,
			Prober:         probers[i],
			AbortOnCorrupt: req.AbortOnCorrupt,
			Logger:         logging.WithContext(wctx, c.base),
		}
		slot := &launched{worker: w, done: make(chan struct{})}
		running[i] = slot
		group.Go(func() error {
			return c.runWorker(wctx, slot)
		})
	}
	report.WorkersLaunched = len(running)

	password, found := c.poll(ctx, req, stop, results, running, poll, start)

	stop.Set()
	cancelWorkers()
	report.Stragglers = c.join(running, join)
	if report.Stragglers == 0 {
		if err := group.Wait(); err != nil {
			logging.WarnWithContext(c.logger, "worker exited abnormally", "worker_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "partition may not have been fully searched"),
			)
		}
	}
	results.Close()

	if !found {
		password, found = results.TryReceive()
	}

	aborted := c.collect(&report, running)
	report.Elapsed = elapsed()

	if found {
		report.Found = true
		report.Password = password
		c.logger.Info("password found",
			logging.String(logging.FieldEventType, "password_found"),
			logging.Duration("elapsed", report.Elapsed),
			logging.Int64("attempts", report.Attempts),
		)
		if req.Sink != nil {
			if err := req.Sink.Store(password); err != nil {
				report.OutputErr = err
				logging.ErrorWithContext(c.logger, "failed to write password output", "output_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the output directory is writable"),
				)
			}
		}
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		c.logger.Info("search canceled",
			logging.String(logging.FieldEventType, "search_canceled"),
			logging.Duration("elapsed", report.Elapsed),
			logging.Int64("attempts", report.Attempts),
		)
		return report, err
	}

	if aborted != nil {
		return report, fmt.Errorf("%w: %w", ErrArchiveCorrupt, aborted)
	}

	c.logger.Info("password not found",
		logging.String(logging.FieldEventType, "search_exhausted"),
		logging.Duration("elapsed", report.Elapsed),
		logging.Int64("attempts", report.Attempts),
	)
	if report.Corrupt > 0 {
		logging.WarnWithContext(c.logger, "archive reported corrupt outcomes during search", "corrupt_outcomes",
			logging.Int64("corrupt", report.Corrupt),
			logging.String(logging.FieldErrorHint, "verify the archive is intact; corrupt attempts were counted as misses"),
			logging.String(logging.FieldImpact, "the password may have been skipped"),
		)
	}
	return report, nil
}

func (c *Coordinator) runWorker(ctx context.Context, slot *launched) (err error) {
	defer close(slot.done)
	defer func() {
		_ = slot.worker.Prober.Close()
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panicked: %v", slot.worker.Index, r)
		}
	}()
	slot.stats = slot.worker.Run(ctx)
	return nil
}

// poll waits for a result while any worker is alive and the stop signal is
// unset. A timeout only re-checks liveness; a closed channel or canceled ctx
// ends polling without a result.
func (c *Coordinator) poll(ctx context.Context, req Request, stop *StopSignal, results *ResultChannel, running []*launched, interval time.Duration, start time.Time) (string, bool) {
	lastProgress := start
	for anyAlive(running) && !stop.IsSet() {
		password, err := results.Receive(ctx, interval)
		switch {
		case err == nil:
			stop.Set()
			return password, true
		case errors.Is(err, ErrTimeout):
			if req.ProgressInterval > 0 && c.now().Sub(lastProgress) >= req.ProgressInterval {
				lastProgress = c.now()
				c.logger.Debug("search progress",
					logging.Int64("attempts", totalAttempts(running)),
					logging.Int("alive", aliveCount(running)),
					logging.Duration("elapsed", lastProgress.Sub(start)),
				)
			}
		case ctx.Err() != nil:
			return "", false
		default:
			logging.WarnWithContext(c.logger, "result channel failed", "result_channel_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "polling stopped; pending results are drained once"),
			)
			return "", false
		}
	}
	return "", false
}

// join waits up to timeout for each worker and returns how many missed it.
func (c *Coordinator) join(running []*launched, timeout time.Duration) int {
	stragglers := 0
	for _, slot := range running {
		timer := time.NewTimer(timeout)
		select {
		case <-slot.done:
		case <-timer.C:
			stragglers++
			logging.WarnWithContext(c.logger, "worker did not stop within join timeout", "worker_straggler",
				logging.Worker(slot.worker.Index),
				logging.Duration("join_timeout", timeout),
				logging.String(logging.FieldErrorHint, "a probe is blocked outside the cancellable read loop"),
				logging.String(logging.FieldImpact, "worker abandoned until process exit"),
			)
		}
		timer.Stop()
	}
	return stragglers
}

// collect fills the aggregate counters and returns the error of a worker that
// aborted the run on a corrupt outcome, if any.
func (c *Coordinator) collect(report *Report, running []*launched) error {
	var aborted error
	for _, slot := range running {
		report.Attempts += slot.worker.Attempts()
		report.Corrupt += slot.worker.CorruptCount()
		select {
		case <-slot.done:
		default:
			continue
		}
		report.Workers = append(report.Workers, slot.stats)
		if slot.stats.Aborted && aborted == nil {
			aborted = slot.stats.LastErr
			if aborted == nil {
				aborted = errors.New("probe reported corrupt archive")
			}
		}
	}
	return aborted
}

func anyAlive(running []*launched) bool {
	return aliveCount(running) > 0
}

func aliveCount(running []*launched) int {
	alive := 0
	for _, slot := range running {
		select {
		case <-slot.done:
		default:
			alive++
		}
	}
	return alive
}

func totalAttempts(running []*launched) int64 {
	var total int64
	for _, slot := range running {
		total += slot.worker.Attempts()
	}
	return total
}

func checkArchive(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: no archive path given", ErrTargetNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTargetNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrTargetNotFound, path)
	}
	return nil
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
