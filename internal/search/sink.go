package search

import (
	"fmt"
	"strings"

	"zipcrack/internal/fileutil"
)

// Sink persists the found password.
type Sink interface {
	Store(password string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(password string) error

func (f SinkFunc) Store(password string) error { return f(password) }

// FileSink writes the password verbatim, without a trailing newline, to Path.
// An existing file is replaced.
type FileSink struct {
	Path string
}

func (s FileSink) Store(password string) error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("output path is empty")
	}
	if err := fileutil.WriteFileAtomic(s.Path, []byte(password), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return nil
}
