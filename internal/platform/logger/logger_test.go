package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/review-api/internal/config"
	"github.com/lexiquest/review-api/internal/platform/logger"
)

func restoreDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupWithWriter(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, log)

	log.Info("hidden")
	log.Warn("visible", slog.String("component", "test"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, log, slog.Default())
}

func TestSetupWithWriter_InvalidLevel(t *testing.T) {
	restoreDefault(t)
	buf := &logger.TestLogBuffer{}

	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "verbose"}, buf)
	require.NoError(t, err)

	logger.AssertLogField(t, buf, "configured_level", "verbose")

	buf.Reset()
	log.Debug("dropped")
	log.Info("kept")
	logger.AssertLogContains(t, buf, "kept")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	defaultLogger := slog.Default()
	customLogger := slog.New(slog.NewTextHandler(nil, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{"nil_context_returns_default", nil, defaultLogger},
		{"context_without_logger_returns_default", context.Background(), defaultLogger},
		{"context_with_logger_returns_context_logger", logger.WithLogger(context.Background(), customLogger), customLogger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := logger.FromContextOrDefault(tt.ctx, defaultLogger)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWithLogger(t *testing.T) {
	t.Run("valid_logger", func(t *testing.T) {
		customLogger := slog.New(slog.NewTextHandler(nil, nil))
		ctx := logger.WithLogger(context.Background(), customLogger)

		assert.Equal(t, customLogger, logger.FromContext(ctx))
	})

	t.Run("nil_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.WithLogger(context.Background(), nil)
		})
	})
}

func TestWithRequestID(t *testing.T) {
	ctx, buf := logger.NewTestContext(t)
	ctx = logger.WithRequestID(ctx, "req-42")

	assert.Equal(t, "req-42", logger.RequestIDFromContext(ctx))

	logger.FromContext(ctx).Info("handled")
	logger.AssertLogField(t, buf, "request_id", "req-42")
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, logger.RequestIDFromContext(context.Background()))
	assert.Empty(t, logger.RequestIDFromContext(nil)) //nolint:staticcheck
}
