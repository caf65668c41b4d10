package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerHonoursLevel(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger(&Config{LogLevel: "debug"})
	require.True(t, logger.Enabled(ctx, slog.LevelDebug))

	logger = NewLogger(&Config{LogLevel: "error"})
	require.False(t, logger.Enabled(ctx, slog.LevelWarn))
	require.True(t, logger.Enabled(ctx, slog.LevelError))

	// Unknown or empty levels fall back to info.
	logger = NewLogger(&Config{LogLevel: "verbose"})
	require.False(t, logger.Enabled(ctx, slog.LevelDebug))
	require.True(t, logger.Enabled(ctx, slog.LevelInfo))

	logger = NewLogger(nil)
	require.True(t, logger.Enabled(ctx, slog.LevelInfo))
}
