package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	config := Config{
		Level:     slog.LevelInfo,
		Output:    &bytes.Buffer{},
		Format:    "json",
		AddSource: false,
	}

	logger := New(config)
	require.NotNil(t, logger, "New() should not return nil")
}

func TestNewJSONDefault(t *testing.T) {
	logger := NewJSONDefault()
	require.NotNil(t, logger, "NewJSONDefault() should not return nil")
}

func TestNewText(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewText(buf, slog.LevelInfo)
	require.NotNil(t, logger, "NewText() should not return nil")

	logger.Info("delivery scanned", "number", "BRD-1")
	assert.Contains(t, buf.String(), "delivery scanned", "Expected message in text output")
	assert.Contains(t, buf.String(), "number=BRD-1", "Expected attribute in text output")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, slog.LevelInfo, config.Level, "Expected info level by default")
	assert.Equal(t, "json", config.Format, "Expected json format by default")
	assert.False(t, config.AddSource, "Expected AddSource false by default")
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelDebug, Output: buf, Format: "json"})

	logger.Info("bordereau created", "number", "BRD-2024-001", "items", 3)

	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err, "Output should be valid JSON")

	assert.Equal(t, "bordereau created", entry["msg"], "Expected message field")
	assert.Equal(t, "INFO", entry["level"], "Expected level field")
	assert.Equal(t, "BRD-2024-001", entry["number"], "Expected number attribute")
	assert.Equal(t, float64(3), entry["items"], "Expected items attribute")
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelWarn, Output: buf, Format: "json"})

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String(), "Messages below the configured level should be dropped")

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message", "Warn message should pass the level filter")
}

func TestLogger_ContextMethods(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelDebug, Output: buf, Format: "json"})
	ctx := context.Background()

	logger.InfoContext(ctx, "info with context")
	logger.ErrorContext(ctx, "error with context")
	logger.WarnContext(ctx, "warn with context")
	logger.DebugContext(ctx, "debug with context")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "Expected one line per log call")

	levels := []string{"INFO", "ERROR", "WARN", "DEBUG"}
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "Each line should be valid JSON")
		assert.Equal(t, levels[i], entry["level"], "Expected matching level")
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NoOpLogger()
	require.NotNil(t, logger, "NoOpLogger() should not return nil")

	// None of these should panic or produce output
	logger.Info("info")
	logger.Error("error")
	logger.Warn("warn")
	logger.Debug("debug")
	logger.InfoContext(context.Background(), "info with context")
}
