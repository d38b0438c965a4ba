package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level LogLevel) (*VetLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: "json",
		Output: &buf,
	})
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestLogLevelString(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFatal, "FATAL"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, nil, "warn message")
	logger.Error(ctx, nil, "error message")

	records := decodeLines(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, "warn message", records[0]["msg"])
	assert.Equal(t, "error message", records[1]["msg"])
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)
	ctx := context.Background()

	logger.Info(ctx, "scanned", "files", 42, "root", "src/app")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, float64(42), records[0]["files"])
	assert.Equal(t, "src/app", records[0]["root"])
}

func TestLoggerWithError(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	logger.Error(context.Background(), errors.New("boom"), "check failed")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "boom", records[0]["error"])
}

func TestLoggerWith(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	child := logger.With("run_id", "abc123")
	child.Info(context.Background(), "started")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "abc123", records[0]["run_id"])

	// Parent logger is unaffected
	buf.Reset()
	logger.Info(context.Background(), "plain")
	records = decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0], "run_id")
}

func TestLoggerWithComponent(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	logger.WithComponent("walker").Info(context.Background(), "walk complete")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "walker", records[0]["component"])
}

func TestFatalAlwaysLogs(t *testing.T) {
	logger, buf := newTestLogger(LevelFatal)

	logger.Error(context.Background(), nil, "suppressed")
	logger.Fatal(context.Background(), errors.New("fatal"), "fatal message")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "fatal message", records[0]["msg"])
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "src/app/hero.component.ts", "src/app/hero.component.ts"},
		{"password", "password=hunter2", "[REDACTED]"},
		{"token", "Bearer token abc", "[REDACTED]"},
		{"auth", "Authorization header", "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeForLog(tt.input))
		})
	}

	t.Run("truncates long strings", func(t *testing.T) {
		long := strings.Repeat("x", 2000)
		out := SanitizeForLog(long)
		assert.True(t, strings.HasSuffix(out, "...[TRUNCATED]"))
		assert.Less(t, len(out), len(long))
	})
}

func TestLogSecurityEvent(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	LogSecurityEvent(logger, context.Background(), "path_traversal", map[string]interface{}{
		"path":   "../../etc/passwd",
		"secret": "my secret value",
	})

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "security", records[0]["event_type"])
	assert.Equal(t, "path_traversal", records[0]["event"])
	assert.Equal(t, "../../etc/passwd", records[0]["path"])
	assert.Equal(t, "[REDACTED]", records[0]["secret"])
}

func TestPerfLogger(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	perf := logger.StartOperation("check")
	perf.End(context.Background())

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "Operation completed", records[0]["msg"])
	assert.Equal(t, "check", records[0]["operation"])
	assert.Contains(t, records[0], "duration_ms")
}

func TestPerfLoggerEndWithError(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	perf := logger.StartOperation("check")
	perf.EndWithError(context.Background(), errors.New("walk failed"))

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "Operation failed", records[0]["msg"])
	assert.Equal(t, "walk failed", records[0]["error"])
}
