package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", zap.String("key", "foo"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "key")
	require.Contains(t, out, "info")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("probe", zap.Bool("found", true))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "probe", entry["msg"])
	require.Equal(t, "debug", entry["level"])
	require.Equal(t, true, entry["found"])
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.log")
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", File: path}, &buf)
	require.NoError(t, err)

	logger.Warn("to both")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "to both"))
	require.Contains(t, buf.String(), "to both")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	require.ErrorContains(t, err, "parse log level")

	_, err = New(Config{Level: "info", Format: "xml"}, &bytes.Buffer{})
	require.ErrorContains(t, err, "unknown log format")
}
