package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned by Receive when no result arrived within the wait.
	ErrTimeout = errors.New("result channel: receive timed out")
	// ErrClosed is returned once the channel is closed and empty.
	ErrClosed = errors.New("result channel: closed")
)

// ResultChannel carries found passwords from workers to the coordinator.
// Producers never block: the buffer holds at least one slot per worker and
// each worker pushes at most once.
type ResultChannel struct {
	ch     chan string
	mu     sync.RWMutex
	closed bool
}

// NewResultChannel returns a channel buffered for capacity producers.
func NewResultChannel(capacity int) *ResultChannel {
	return &ResultChannel{ch: make(chan string, max(1, capacity))}
}

// Push enqueues password without blocking. It reports false when the buffer
// is full or the channel has been closed.
func (r *ResultChannel) Push(password string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.ch <- password:
		return true
	default:
		return false
	}
}

// Receive waits up to timeout for a result. It returns ErrTimeout when the
// wait elapses, ErrClosed when the channel is closed and drained, or the
// context error when ctx ends first.
func (r *ResultChannel) Receive(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case password, ok := <-r.ch:
		if !ok {
			return "", ErrClosed
		}
		return password, nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// TryReceive returns a buffered result if one is immediately available.
func (r *ResultChannel) TryReceive() (string, bool) {
	select {
	case password, ok := <-r.ch:
		return password, ok
	default:
		return "", false
	}
}

// Close stops accepting pushes. Buffered results remain receivable.
func (r *ResultChannel) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.ch)
}
