package preflight

import (
	"context"
	"path/filepath"

	"zipcrack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Advisory failures are surfaced as warnings and do not block the run.
	Advisory bool
}

// Request names the inputs of one crack run.
type Request struct {
	Archive    string
	OutputPath string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, req Request) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckArchive(req.Archive)}
	if req.Archive != "" {
		results = append(results, CheckEncryptedEntries(req.Archive))
	}

	if req.OutputPath != "" {
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(req.OutputPath)))
	}

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfyTopic(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// Blocking returns the failed results that are not advisory.
func Blocking(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			failed = append(failed, r)
		}
	}
	return failed
}

// Warnings returns the failed advisory results.
func Warnings(results []Result) []Result {
	var warned []Result
	for _, r := range results {
		if !r.Passed && r.Advisory {
			warned = append(warned, r)
		}
	}
	return warned
}
