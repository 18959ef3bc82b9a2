// Package services defines shared utilities consumed by the crack runtime and
// the search engine.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, worker indexes, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs canceled vs not found).
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the tool.
package services
