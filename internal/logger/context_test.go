package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal verifies an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithNameAndKV checks that scoped loggers carry their name and fields.
func TestWithNameAndKV(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "alerter")
	ctx = WithKV(ctx, "channel", "aircraft_state")

	WarnKV(ctx, "Frame dropped", "reason", "decode")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "alerter", entries[0].LoggerName)
	require.Equal(t, "aircraft_state", entries[0].ContextMap()["channel"])
	require.Equal(t, "decode", entries[0].ContextMap()["reason"])
}
