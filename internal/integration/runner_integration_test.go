package integration

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/taws-partitions/internal/api/grpc/trigger"
	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/service/runner"
)

// freeAddress reserves a loopback port and releases it for the server under test.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startRunner runs the scenarios on the wall clock with both endpoints enabled.
// The returned channel yields the result of runner.Run.
func startRunner(ctx context.Context, t *testing.T, triggerAddr, metricsAddr string) <-chan error {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			FramesPerScenario: 400,
			Seed:              1,
			TriggerAddress:    triggerAddr,
			MetricsAddress:    metricsAddr,
			ReportFile:        filepath.Join(dir, "report.json"),
		}),
	)

	done := make(chan error, 1)

	go func() {
		done <- runner.Run(ctx, &runner.Options{
			ConfigPath:         cfgPath,
			SkipExclusiveCheck: true,
		})
	}()

	return done
}

// TestRunner_EndpointsServeWhileRunning polls the trigger feed and the metrics
// endpoint of a live runner, then interrupts it.
func TestRunner_EndpointsServeWhileRunning(t *testing.T) {
	t.Parallel()

	triggerAddr := freeAddress(t)
	metricsAddr := freeAddress(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := startRunner(ctx, t, triggerAddr, metricsAddr)

	client, err := trigger.Dial(ctx, triggerAddr, []trigger.Option{trigger.WithCallTimeout(time.Second)})
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	// The monitor publishes once its partition got a slot.
	require.Eventually(t, func() bool {
		snapshot, err := client.GetTriggerState(ctx)

		return err == nil && snapshot.EvaluatedAt > 0
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + metricsAddr + "/metrics") //nolint:noctx // Test code.
		if err != nil {
			return false
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(resp.Body)

		return err == nil && resp.StatusCode == http.StatusOK &&
			containsAll(string(body), "taws_frames_processed_total", "taws_monitor_events_total")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err = <-done:
		if err != nil {
			require.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

// TestRunner_RejectsTakenTriggerAddress verifies a busy feed address fails the run.
func TestRunner_RejectsTakenTriggerAddress(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() {
		_ = l.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case err = <-startRunner(ctx, t, l.Addr().String(), ""):
		require.ErrorContains(t, err, "listen on")
	case <-ctx.Done():
		t.Fatal("runner did not finish")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}

	return true
}
