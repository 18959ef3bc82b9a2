package crackrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"zipcrack/internal/config"
	"zipcrack/internal/fileutil"
	"zipcrack/internal/history"
	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/notifications"
	"zipcrack/internal/preflight"
	"zipcrack/internal/probe"
	"zipcrack/internal/search"
	"zipcrack/internal/services"
)

// DefaultArchive is searched when no archive path is given.
const DefaultArchive = "emergency_storage_key.zip"

const finalizeTimeout = 15 * time.Second

// Options configures one run.
type Options struct {
	Archive string
	// Logger replaces the config-driven logger and per-run log file.
	Logger *slog.Logger
	// Opener replaces the ZIP prober.
	Opener probe.Opener
	// Notifier replaces the config-driven ntfy service.
	Notifier notifications.Service
}

// Report describes a finished run.
type Report struct {
	search.Report
	RunID        string
	Archive      string
	OutputPath   string
	StartedAt    time.Time
	Combinations *big.Int
	LogPath      string
	Preflight    []preflight.Result
	ExtractDir   string
	Extracted    int
	ExtractErr   error
}

// Run executes a crack run with cfg. The returned error is nil both when the
// password was found and when the keyspace was exhausted; callers inspect
// Report.Found.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (Report, error) {
	if cfg == nil {
		return Report{}, fmt.Errorf("config is required")
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	archive := strings.TrimSpace(opts.Archive)
	if archive == "" {
		archive = DefaultArchive
	}
	if abs, err := filepath.Abs(archive); err == nil {
		archive = abs
	}

	report := Report{
		RunID:      uuid.NewString(),
		Archive:    archive,
		OutputPath: cfg.Search.OutputFile,
		StartedAt:  time.Now(),
		ExtractDir: cfg.Search.ExtractDir,
	}
	ctx = services.WithRunID(ctx, report.RunID)

	// A missing archive fails before any directory, lock or log is created.
	if check := preflight.CheckArchive(archive); !check.Passed {
		report.Preflight = []preflight.Result{check}
		return report, preflightError(report.Preflight)
	}

	alphabet, err := keyspace.NewAlphabet(cfg.Search.Alphabet)
	if err != nil {
		return report, services.Wrap(services.ErrValidation, "crackrun", "parse alphabet", "", err)
	}
	report.Combinations = keyspace.Size(alphabet.Len(), cfg.Search.Length)

	if err := cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "crackrun", "ensure directories", "", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "crackrun", "acquire lock", cfg.LockPath(), err)
	}
	if !locked {
		return report, services.Wrap(services.ErrBusy, "crackrun", "acquire lock", "another zipcrack run is active for this state directory", nil)
	}
	defer func() { _ = lock.Unlock() }()

	base := opts.Logger
	if base == nil {
		report.LogPath = filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("zipcrack-%s.log", report.RunID))
		base, err = logging.NewFromConfig(cfg, report.LogPath)
		if err != nil {
			return report, fmt.Errorf("init logger: %w", err)
		}
		logging.PruneRunLogs(base, cfg.Paths.LogDir, cfg.Logging.RetentionDays, report.LogPath)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "crackrun"))

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	logger.Info("crack run starting",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("archive", archive),
		logging.String("started_at", report.StartedAt.Format(time.DateTime)),
		logging.String("combinations", keyspace.FormatCount(report.Combinations)),
		logging.Int("length", cfg.Search.Length),
		logging.Int("alphabet_size", alphabet.Len()),
		logging.Int("workers", cfg.WorkerCount()),
	)

	report.Preflight = preflight.RunAll(ctx, cfg, preflight.Request{Archive: archive, OutputPath: cfg.Search.OutputFile})
	for _, w := range preflight.Warnings(report.Preflight) {
		logging.WarnWithContext(logger, "preflight warning", "preflight_warning",
			logging.String("check", w.Name),
			logging.String("detail", w.Detail),
			logging.String(logging.FieldImpact, "search continues"),
		)
	}
	if blocking := preflight.Blocking(report.Preflight); len(blocking) > 0 {
		err := preflightError(blocking)
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the reported check and rerun"),
		)
		publish(ctx, logger, notifier, notifications.EventError, notifications.Payload{"context": "preflight", "error": err.Error()})
		return report, err
	}

	ledger := openLedger(context.WithoutCancel(ctx), logger, cfg, report, alphabet)
	if ledger != nil {
		defer ledger.Close()
	}

	publish(ctx, logger, notifier, notifications.EventRunStarted, notifications.Payload{
		"archive":      filepath.Base(archive),
		"combinations": keyspace.FormatCount(report.Combinations),
		"workers":      cfg.WorkerCount(),
	})

	coordinator := search.NewCoordinator(base)
	searchReport, runErr := coordinator.Run(ctx, search.Request{
		Archive:          archive,
		Alphabet:         alphabet,
		Length:           cfg.Search.Length,
		Workers:          cfg.WorkerCount(),
		PollInterval:     cfg.PollInterval(),
		JoinTimeout:      cfg.JoinTimeout(),
		ProgressInterval: cfg.ProgressInterval(),
		AbortOnCorrupt:   cfg.Search.AbortOnCorrupt,
		Opener:           opts.Opener,
		Sink:             search.FileSink{Path: cfg.Search.OutputFile},
	})
	report.Report = searchReport

	if runErr == nil && report.Found && report.ExtractDir != "" {
		report.Extracted, report.ExtractErr = probe.Extract(ctx, archive, []byte(report.Password), report.ExtractDir)
		if report.ExtractErr != nil {
			logging.WarnWithContext(logger, "archive extraction failed", "extract_failed",
				logging.Error(report.ExtractErr),
				logging.String("extract_dir", report.ExtractDir),
				logging.String(logging.FieldImpact, "password was recovered; content not extracted"),
			)
		} else {
			logger.Info("archive extracted",
				logging.String(logging.FieldEventType, "archive_extracted"),
				logging.String("extract_dir", report.ExtractDir),
				logging.Int("files", report.Extracted),
			)
		}
	}

	finalCtx, finalCancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer finalCancel()

	result := history.Result{
		Attempts: report.Attempts,
		Corrupt:  report.Corrupt,
		Workers:  report.WorkersLaunched,
		Elapsed:  report.Elapsed,
		Err:      runErr,
	}
	switch {
	case runErr != nil:
		result.Status = services.FailureStatus(runErr)
		if result.Status != history.StatusCanceled {
			publish(finalCtx, logger, notifier, notifications.EventError, notifications.Payload{"context": "search", "error": runErr.Error()})
		}
	case report.Found:
		result.Status = history.StatusFound
		if report.OutputErr != nil {
			result.Err = fmt.Errorf("write output: %w", report.OutputErr)
		}
		payload := notifications.Payload{
			"archive": filepath.Base(archive),
			"elapsed": report.Elapsed.Round(time.Millisecond).String(),
		}
		if report.OutputErr == nil {
			payload["output"] = report.OutputPath
		}
		publish(finalCtx, logger, notifier, notifications.EventPasswordFound, payload)
	default:
		result.Status = history.StatusExhausted
		publish(finalCtx, logger, notifier, notifications.EventSearchExhausted, notifications.Payload{
			"archive":  filepath.Base(archive),
			"attempts": keyspace.FormatCount(big.NewInt(report.Attempts)),
		})
	}

	if ledger != nil {
		if err := ledger.Finish(finalCtx, report.RunID, result); err != nil {
			logging.WarnWithContext(logger, "failed to record run result", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from history"),
			)
		}
	}

	return report, runErr
}

// openLedger opens the history store and records the run. Failures are
// logged and disable history for this run.
func openLedger(ctx context.Context, logger *slog.Logger, cfg *config.Config, report Report, alphabet keyspace.Alphabet) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	warn := func(msg string, err error) {
		logging.WarnWithContext(logger, msg, "history_unavailable",
			logging.Error(err),
			logging.String("path", cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "run will not be recorded in history"),
		)
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		warn("failed to open history", err)
		return nil
	}
	if n, err := store.ReconcileInterrupted(ctx); err != nil {
		warn("failed to reconcile interrupted runs", err)
	} else if n > 0 {
		logger.Info("marked interrupted runs as failed",
			logging.String(logging.FieldEventType, "history_reconciled"),
			logging.Int64("runs", n),
		)
	}

	sum, _, err := fileutil.SHA256File(report.Archive)
	if err != nil {
		logger.Debug("archive checksum unavailable", logging.Error(err))
	}
	if err := store.Begin(ctx, history.Run{
		ID:            report.RunID,
		Archive:       report.Archive,
		ArchiveSHA256: sum,
		OutputPath:    report.OutputPath,
		Alphabet:      alphabet.String(),
		Length:        cfg.Search.Length,
		Workers:       cfg.WorkerCount(),
		StartedAt:     report.StartedAt,
	}); err != nil {
		warn("failed to record run start", err)
		_ = store.Close()
		return nil
	}
	return store
}

func publish(ctx context.Context, logger *slog.Logger, notifier notifications.Service, event notifications.Event, payload notifications.Payload) {
	if err := notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification delivered"),
		)
	}
}

// preflightError maps blocking preflight failures to an error. A missing
// archive surfaces as search.ErrTargetNotFound.
func preflightError(blocking []preflight.Result) error {
	details := make([]string, 0, len(blocking))
	archiveMissing := false
	for _, r := range blocking {
		details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		if r.Name == preflight.ArchiveCheckName {
			archiveMissing = true
		}
	}
	detail := strings.Join(details, "; ")
	if archiveMissing {
		return fmt.Errorf("%w: %s", search.ErrTargetNotFound, detail)
	}
	return services.Wrap(services.ErrValidation, "preflight", "", detail, nil)
}

// IsNotFound reports whether err means the archive was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, search.ErrTargetNotFound)
}
