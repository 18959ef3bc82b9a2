// Package main hosts the zipcrack CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, applies flag
// overrides, and hands off to internal/crackrun for the search itself. The
// remaining commands plan keyspaces, list run history, send a test
// notification, and scaffold configuration.
package main
