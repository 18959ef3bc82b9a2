package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusFound     Status = "found"
	StatusExhausted Status = "exhausted"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsTerminal reports whether the status ends a run.
func (s Status) IsTerminal() bool {
	return s != StatusRunning && s != ""
}

// Run is one crack attempt against an archive.
type Run struct {
	ID            string
	Archive       string
	ArchiveSHA256 string
	OutputPath    string
	Alphabet      string
	Length        int
	Workers       int
	Status        Status
	Attempts      int64
	Corrupt       int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Elapsed       time.Duration
	ErrorMessage  string
}

// Result is the terminal state recorded by Finish.
type Result struct {
	Status   Status
	Attempts int64
	Corrupt  int64
	Workers  int
	Elapsed  time.Duration
	Err      error
}
