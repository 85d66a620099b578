package logrus

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Format: "json", Output: &buf})

	logger.Error("catalog: refresh failed", errors.New("db closed"), "platforms", 3, 42, "answer")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "catalog: refresh failed", line["msg"])
	require.Equal(t, "error", line["level"])
	require.Equal(t, "db closed", line["error"])
	require.Equal(t, float64(3), line["platforms"])
	require.Equal(t, "answer", line["42"])
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "not-a-level", Output: &buf})

	logger.Debug("hidden")
	require.Zero(t, buf.Len())

	logger.With("guild_id", 7).Info("visible", "dangling")
	require.Contains(t, buf.String(), "visible")
	require.Contains(t, buf.String(), "guild_id=7")
	require.Contains(t, buf.String(), "_extra=dangling")
}
