package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	workerKey contextKey = "worker"
)

// WithRunID annotates context with the crack run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithWorker annotates context with a search worker index.
func WithWorker(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, workerKey, index)
}

// WorkerFromContext returns the worker index if present.
func WorkerFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(workerKey).(int)
	return v, ok
}
