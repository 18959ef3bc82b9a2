package probe

import (
	"context"
	"io"
)

// Outcome classifies a single probe attempt.
type Outcome int

const (
	WrongPassword Outcome = iota
	Corrupt
	Success
)

func (o Outcome) String() string {
	switch o {
	case WrongPassword:
		return "wrong_password"
	case Corrupt:
		return "corrupt"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Result is the outcome of one attempt plus the underlying error, if any.
type Result struct {
	Outcome Outcome
	Err     error
}

// OK reports whether the attempt decoded the archive.
func (r Result) OK() bool { return r.Outcome == Success }

// Prober tries passwords against one archive. A Prober is owned by a single
// worker and is not safe for concurrent use.
type Prober interface {
	Probe(ctx context.Context, password []byte) Result
	io.Closer
}

// Opener hands out one Prober per worker.
type Opener interface {
	Open() (Prober, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func() (Prober, error)

func (f OpenerFunc) Open() (Prober, error) { return f() }
