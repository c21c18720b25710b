package checker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/taws-partitions/internal/api/grpc/trigger"
	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/service/composer"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional trigger feed address override.
	ServerAddress string
	// PollInterval defines the interval between trigger state checks.
	PollInterval time.Duration
	// ExitOnTrigger stops the checker with ErrTriggerFired on the first active trigger.
	ExitOnTrigger bool
	// Verbose logs every poll regardless of the global log level.
	Verbose bool
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = time.Second

var (
	// ErrTriggerFired is returned when ExitOnTrigger is set and a trigger fires.
	ErrTriggerFired = errors.New("monitor trigger fired")
	// errNoServerAddress is returned when neither settings nor options name the feed.
	errNoServerAddress = errors.New("trigger feed address is not set")
)

// stateSource is the part of the trigger client the checker uses.
type stateSource interface {
	GetTriggerState(ctx context.Context) (composer.Snapshot, error)
}

// Run polls the trigger feed of a runner and logs what the monitor raises.
//
//nolint:cyclop // Flow is straightforward and readable; splitting would reduce clarity.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "taws-trigger-checker")

	if opts.Verbose {
		ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.WithLevel(zapcore.DebugLevel)))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	// Command line argument overrides config.
	serverAddress := cfg.TriggerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	if serverAddress == "" {
		return errNoServerAddress
	}

	client, err := trigger.Dial(ctx, serverAddress, []trigger.Option{trigger.WithCallTimeout(cfg.Timeout)})
	if err != nil {
		return fmt.Errorf("dial trigger feed: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Polling trigger state", "server_address", serverAddress, "interval", opts.PollInterval.String())

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	w := newWatcher(client)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			active, err := w.check(ctx)
			if err != nil {
				logger.ErrorKV(ctx, "Check state failed", "error", err)
				continue
			}

			if opts.ExitOnTrigger && len(active) > 0 {
				return fmt.Errorf("%w: %q", ErrTriggerFired, active)
			}
		}
	}
}

// watcher remembers the fire counts of the previous poll.
type watcher struct {
	source stateSource
	seen   map[string]uint64
}

func newWatcher(source stateSource) *watcher {
	return &watcher{
		source: source,
		seen:   make(map[string]uint64),
	}
}

// check fetches one snapshot and logs every trigger that fired since the
// previous check. It returns the triggers active in the snapshot.
func (w *watcher) check(ctx context.Context) ([]string, error) {
	snapshot, err := w.source.GetTriggerState(ctx)
	if err != nil {
		return nil, err
	}

	for _, message := range slices.Sorted(maps.Keys(snapshot.Fired)) {
		count := snapshot.Fired[message]
		if count <= w.seen[message] {
			continue
		}

		logger.WarnKV(ctx, "Monitor trigger fired",
			"trigger", message,
			"new", count-w.seen[message],
			"total", count,
			"evaluated_at", snapshot.EvaluatedAt)

		w.seen[message] = count
	}

	if len(snapshot.Active) == 0 {
		logger.DebugKV(ctx, "No active triggers", "evaluated_at", snapshot.EvaluatedAt)
	}

	return snapshot.Active, nil
}
