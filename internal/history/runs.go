package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = `id, archive, archive_sha256, output_path, alphabet, length, workers,
    status, attempts, corrupt, started_at, finished_at, elapsed_ms, error_message`

// Begin records a new run in the running state. StartedAt defaults to now.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(
		ctx,
		`INSERT INTO runs (
            id, archive, archive_sha256, output_path, alphabet, length, workers,
            status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Archive,
		nullableString(run.ArchiveSHA256),
		nullableString(run.OutputPath),
		run.Alphabet,
		run.Length,
		run.Workers,
		StatusRunning,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the terminal state of a running run.
func (s *Store) Finish(ctx context.Context, id string, result Result) error {
	if !result.Status.IsTerminal() {
		return fmt.Errorf("finish run %s: status %q is not terminal", id, result.Status)
	}
	var message any
	if result.Err != nil {
		message = result.Err.Error()
	}
	res, err := s.exec(
		ctx,
		`UPDATE runs SET status = ?, attempts = ?, corrupt = ?, workers = CASE WHEN ? > 0 THEN ? ELSE workers END,
            finished_at = ?, elapsed_ms = ?, error_message = ?
        WHERE id = ?`,
		result.Status,
		result.Attempts,
		result.Corrupt,
		result.Workers,
		result.Workers,
		formatTime(time.Now()),
		result.Elapsed.Milliseconds(),
		message,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Get fetches a run by id. A missing run returns nil without error.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReconcileInterrupted marks runs still in the running state as failed. Only
// call it while holding the run lock, when no other run can be active.
func (s *Store) ReconcileInterrupted(ctx context.Context) (int64, error) {
	res, err := s.exec(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE status = ?`,
		StatusFailed,
		formatTime(time.Now()),
		"interrupted: process exited before the run finished",
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reconcile interrupted runs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		sha        sql.NullString
		output     sql.NullString
		status     string
		startedAt  string
		finishedAt sql.NullString
		elapsedMS  int64
		message    sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Archive,
		&sha,
		&output,
		&run.Alphabet,
		&run.Length,
		&run.Workers,
		&status,
		&run.Attempts,
		&run.Corrupt,
		&startedAt,
		&finishedAt,
		&elapsedMS,
		&message,
	); err != nil {
		return nil, err
	}
	run.ArchiveSHA256 = sha.String
	run.OutputPath = output.String
	run.Status = Status(status)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.ErrorMessage = message.String
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
