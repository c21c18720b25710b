// Package metrics declares the Prometheus counters of the data plane and
// serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/taws-partitions/internal/logger"
)

const namespace = "taws"

// Drop reasons.
const (
	ReasonDecode = "decode"
	ReasonStale  = "stale"
)

// Scenario results.
const (
	ResultPassed = "passed"
	ResultFailed = "failed"
)

var (
	// FramesProcessed counts aircraft state frames turned into alert states.
	FramesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_processed_total",
		Help:      "Aircraft state frames processed by the alerter",
	})

	// FramesDropped counts received payloads that were discarded.
	// Labels: partition, reason (decode, stale)
	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_dropped_total",
		Help:      "Received payloads discarded before processing",
	}, []string{"partition", "reason"})

	// MonitorEvents counts populated event slots submitted to the monitor.
	// Labels: slot (stream name)
	MonitorEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_events_total",
		Help:      "Populated event slots submitted to the monitor",
	}, []string{"slot"})

	// MonitorTriggers counts true verdicts.
	// Labels: trigger (trigger name)
	MonitorTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_triggers_total",
		Help:      "Monitor triggers that fired",
	}, []string{"trigger"})

	// Scenarios counts finished scenarios.
	// Labels: result (passed, failed)
	Scenarios = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scenarios_total",
		Help:      "Scenarios run by the harness",
	}, []string{"result"})
)

const shutdownTimeout = 5 * time.Second

// Serve exposes the default registry on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf(ctx, "metrics server shutdown: %v", err)
		}
	}()

	logger.Infof(ctx, "serving metrics on %s", addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
