package search

import (
	"fmt"

	"zipcrack/internal/services"
)

var (
	// ErrTargetNotFound is returned before any worker starts when the archive
	// does not exist.
	ErrTargetNotFound = fmt.Errorf("search: target archive: %w", services.ErrNotFound)
	// ErrArchiveCorrupt is returned when AbortOnCorrupt is set and a probe
	// reported a structural failure.
	ErrArchiveCorrupt = fmt.Errorf("search: %w", services.ErrCorrupt)
)
