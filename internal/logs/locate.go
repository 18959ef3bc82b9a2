package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"zipcrack/internal/logging"
)

// ErrNoRunLog reports that no run log matched.
var ErrNoRunLog = errors.New("no run log found")

// RunLog is one per-run log file.
type RunLog struct {
	RunID   string
	Path    string
	ModTime time.Time
}

// List returns the run logs in dir, newest first. A missing dir yields an
// empty list.
func List(dir string) ([]RunLog, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logging.RunLogPattern))
	if err != nil {
		return nil, fmt.Errorf("glob run logs: %w", err)
	}
	runs := make([]RunLog, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), ".log")
		runs = append(runs, RunLog{
			RunID:   strings.TrimPrefix(name, "zipcrack-"),
			Path:    path,
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(runs, func(a, b RunLog) int {
		return b.ModTime.Compare(a.ModTime)
	})
	return runs, nil
}

// Locate returns the log for the run whose id starts with prefix. An empty
// prefix selects the most recently written log.
func Locate(dir, prefix string) (RunLog, error) {
	runs, err := List(dir)
	if err != nil {
		return RunLog{}, err
	}
	prefix = strings.TrimSpace(prefix)
	if prefix != "" {
		runs = lo.Filter(runs, func(r RunLog, _ int) bool {
			return strings.HasPrefix(r.RunID, prefix)
		})
	}
	switch {
	case len(runs) == 0 && prefix == "":
		return RunLog{}, fmt.Errorf("%w in %s", ErrNoRunLog, dir)
	case len(runs) == 0:
		return RunLog{}, fmt.Errorf("%w for run %q", ErrNoRunLog, prefix)
	case len(runs) > 1 && prefix != "":
		return RunLog{}, fmt.Errorf("run id prefix %q is ambiguous (%d matches)", prefix, len(runs))
	}
	return runs[0], nil
}
