package search

import "sync/atomic"

// StopSignal is a write-once-true flag shared by the coordinator and workers.
// The zero value is unset and ready to use.
type StopSignal struct {
	set atomic.Bool
}

// Set raises the signal. Calling it more than once has no further effect.
func (s *StopSignal) Set() { s.set.Store(true) }

// IsSet reports whether the signal has been raised. It never blocks.
func (s *StopSignal) IsSet() bool { return s.set.Load() }
