package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: "warn", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger, id := WithRunID(logger)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "arm", "blue")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "blue", rec["arm"])
	assert.Equal(t, id, rec["run_id"])
}

func TestBothWritesFileAndConsole(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, closer, err := New(config.LoggingConfig{Level: "info", Format: "text", Output: "both", FilePath: path}, &buf)
	require.NoError(t, err)

	logger.Info("calibrated", "file", "wd.ms.fits")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "calibrated")
	assert.Contains(t, buf.String(), "file=wd.ms.fits")
}

func TestFileOutputNeedsPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestUnknownOutput(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "syslog"}, &bytes.Buffer{})
	assert.Error(t, err)
}
