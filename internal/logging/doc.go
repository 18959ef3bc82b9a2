// Package logging assembles structured slog loggers and formatting helpers used
// across zipcrack.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so search code can automatically
// tag log lines with run IDs and worker indexes. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing guarantees as the rest of the tool.
package logging
