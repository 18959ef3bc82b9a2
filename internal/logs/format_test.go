package logs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zipcrack/internal/logs"
)

func TestFormatRecord(t *testing.T) {
	line := `{"ts":"2026-10-18T09:00:00Z","level":"info","msg":"password found","component":"search","run_id":"r1","worker":3,"elapsed":"1.5 s"}`
	got := logs.Format(line)
	require.Equal(t, `2026-10-18T09:00:00Z INFO  [search] password found elapsed="1.5 s" run_id=r1 worker=3`, got)
}

func TestFormatPassesThroughNonJSON(t *testing.T) {
	require.Equal(t, "plain text", logs.Format("plain text"))
	require.Equal(t, "[1,2]", logs.Format("[1,2]"))
}
