package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerRespectsChildLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoLevel := new(slog.LevelVar)
	debugLevel := new(slog.LevelVar)
	debugLevel.Set(slog.LevelDebug)

	logger := slog.New(TeeHandler(
		newPrettyHandler(&infoBuf, infoLevel, false),
		newJSONHandler(&debugBuf, debugLevel, false),
		nil,
	)).With(String(FieldComponent, "search"))

	logger.Debug("attempt batch", Int("attempts", 10))
	logger.Info("search started")

	if strings.Contains(infoBuf.String(), "attempt batch") {
		t.Fatalf("info handler should drop debug lines: %q", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "search: search started") {
		t.Fatalf("info handler missing line: %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), `"msg":"attempt batch"`) {
		t.Fatalf("debug handler missing debug line: %q", debugBuf.String())
	}
	if !strings.Contains(debugBuf.String(), `"component":"search"`) {
		t.Fatalf("debug handler missing component attr: %q", debugBuf.String())
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler().(NoopHandler); !ok {
		t.Fatal("expected noop handler for empty tee")
	}
	var buf bytes.Buffer
	single := newJSONHandler(&buf, new(slog.LevelVar), false)
	if TeeHandler(nil, single) != single {
		t.Fatal("expected single handler to be returned as-is")
	}
}
