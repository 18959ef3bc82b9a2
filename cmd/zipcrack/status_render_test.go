package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"zipcrack/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Password", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Password:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Password", statusOK, "ba", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLinesSkipPassing(t *testing.T) {
	results := []preflight.Result{
		{Name: "Archive", Passed: true, Detail: "readable"},
		{Name: "Encrypted entries", Passed: false, Advisory: true, Detail: "no encrypted entries"},
		{Name: "Output directory", Passed: false, Detail: "not writable"},
	}
	lines := preflightLines(results, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[WARN] no encrypted entries") {
		t.Fatalf("expected advisory warning first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not writable") {
		t.Fatalf("expected blocking error second, got %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
