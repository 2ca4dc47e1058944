package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	require.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")
	t.Cleanup(func() { defaultLogger = nil })

	L().Info("source_rows_loaded", "rows", 3)
	require.Zero(t, buf.Len())

	L().Warn("hierarchy_conflict", "id", "100")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hierarchy_conflict", rec["msg"])
	require.Equal(t, "100", rec["id"])
}

func TestSetupWriter_TextByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "")
	t.Cleanup(func() { defaultLogger = nil })

	L().Info("run_done", "rows", 2)
	require.Contains(t, buf.String(), "msg=run_done rows=2")
}
