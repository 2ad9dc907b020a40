package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandler_Levels(t *testing.T) {
	tests := []struct {
		name         string
		handlerLevel slog.Level
		logFunc      func(*slog.Logger)
		shouldLog    bool
	}{
		{"info handler logs info", slog.LevelInfo, func(l *slog.Logger) { l.Info("test") }, true},
		{"info handler filters debug", slog.LevelInfo, func(l *slog.Logger) { l.Debug("test") }, false},
		{"debug handler logs debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("test") }, true},
		{"error handler filters info", slog.LevelError, func(l *slog.Logger) { l.Info("test") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewCLIHandler(&buf, tt.handlerLevel))
			tt.logFunc(logger)
			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestCLIHandler_ErrorColor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, colorRed)
	assert.Contains(t, out, colorReset)
}

func TestCLIHandler_AttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).WithGroup("score")

	logger.Info("metric done", "metric", "bus_factor", "latency_ms", 12)

	out := buf.String()
	assert.Contains(t, out, "[score]")
	assert.Contains(t, out, "metric=bus_factor")
	assert.Contains(t, out, "latency_ms=12")
}

func TestSetup_File(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	path := filepath.Join(t.TempDir(), "logs", "scorer.log")
	require.NoError(t, Setup("debug", path))

	slog.Info("run started", "count", 2)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"run started"`)
	assert.Contains(t, string(b), `"count":2`)
}

func TestSetup_Stderr(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	require.NoError(t, Setup("info", ""))
	require.NotNil(t, slog.Default())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"  debug  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestParseLogLevel_SilentSuppressesErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, ParseLogLevel("silent")))
	logger.Error("should not appear")
	assert.Zero(t, buf.Len())
}
