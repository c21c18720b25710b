package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/taws-partitions/internal/api/grpc/trigger"
	"github.com/oshokin/taws-partitions/internal/clock"
	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/engine/alerting"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/metrics"
	"github.com/oshokin/taws-partitions/internal/monitor"
	"github.com/oshokin/taws-partitions/internal/partition"
	repository "github.com/oshokin/taws-partitions/internal/repository/report"
	"github.com/oshokin/taws-partitions/internal/scenario"
	"github.com/oshokin/taws-partitions/internal/service/alerter"
	"github.com/oshokin/taws-partitions/internal/service/composer"
	"github.com/oshokin/taws-partitions/internal/version"
)

// Options controls the runner process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Features overrides the feature files of the configuration.
	Features []string
	// Seed overrides the generator seed when non-zero.
	Seed uint64
	// ReportFile overrides the report path of the configuration.
	ReportFile string
	// Clock drives the runtime; nil uses the wall clock.
	Clock clock.Clock
	// SkipExclusiveCheck allows several runners at once, for tests.
	SkipExclusiveCheck bool
}

// ErrScenariosFailed is returned when at least one scenario failed.
var ErrScenariosFailed = errors.New("scenarios failed")

// Run executes every scenario against the alerter while the monitor
// watches both ports, and returns once the harness is done or ctx ends.
//
//nolint:cyclop,funlen // Linear assembly of the process; splitting would scatter it.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "taws-runner")

	logger.InfoKV(ctx, "Starting", "version", version.Full())

	if !opts.SkipExclusiveCheck {
		if err := ensureExclusive(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(cfg, opts)

	spec, err := monitor.LoadSpec(cfg.MonitorSpec)
	if err != nil {
		return fmt.Errorf("load monitor specification: %w", err)
	}

	mon, err := monitor.New(spec)
	if err != nil {
		return fmt.Errorf("build monitor: %w", err)
	}

	scenarios, err := scenario.LoadFeatures(cfg.Features)
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}

	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}

	rt := partition.NewRuntime(c)

	harness, err := scenario.NewHarness(rt, scenario.Options{
		InputChannel:  cfg.AircraftStateChannel,
		OutputChannel: cfg.AlertChannel,
		Validity:      cfg.HarnessValidity,
		FramePeriod:   cfg.FramePeriod,
		Frames:        cfg.FramesPerScenario,
		Seed:          cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("create harness: %w", err)
	}

	taws, err := alerter.New(rt, alerter.Options{
		InputChannel:  cfg.AircraftStateChannel,
		OutputChannel: cfg.AlertChannel,
		Validity:      cfg.AlerterValidity,
	}, alerter.NewController(alerting.NewReference()))
	if err != nil {
		return fmt.Errorf("create alerter: %w", err)
	}

	feed := composer.NewFeed()

	watcher, err := composer.New(rt, composer.Options{
		InputChannel:  cfg.AircraftStateChannel,
		OutputChannel: cfg.AlertChannel,
		Validity:      cfg.MonitorValidity,
	}, mon, feed)
	if err != nil {
		return fmt.Errorf("create monitor partition: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	servers := startServers(runCtx, cancel, cfg, feed)

	var reports []scenario.Report

	tester := partition.Partition{
		Name: scenario.PartitionName,
		Main: func(ctx context.Context, slot *partition.Slot) error {
			// The suite ends the run for every partition.
			defer cancel()

			logger.InfoKV(ctx, "Running scenarios", "count", len(scenarios), "seed", cfg.Seed)

			var runErr error
			reports, runErr = harness.RunAll(ctx, slot, scenarios)

			return runErr
		},
	}

	scheduler := partition.NewScheduler(c, cfg.SlotDuration)

	runErr := scheduler.Run(runCtx, tester, taws.Partition(), watcher.Partition())

	cancel()

	if err = servers.Wait(); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if runErr != nil {
		return runErr
	}

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("scenarios interrupted: %w", err)
	}

	if cfg.ReportFile != "" {
		repo := repository.NewFileRepository(cfg.ReportFile)
		if err = repo.Save(ctx, reports); err != nil {
			return fmt.Errorf("save report: %w", err)
		}

		logger.InfoKV(ctx, "Report saved", "report_file", cfg.ReportFile)
	}

	return summarize(ctx, reports, len(scenarios))
}

// applyOverrides lets command line options win over the settings file.
func applyOverrides(cfg *config.Config, opts *Options) {
	if len(opts.Features) > 0 {
		cfg.Features = opts.Features
	}

	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano()) //nolint:gosec // Any value is a valid seed.
	}

	if opts.ReportFile != "" {
		cfg.ReportFile = opts.ReportFile
	}
}

// summarize logs the outcome and reports failed scenarios as an error.
func summarize(ctx context.Context, reports []scenario.Report, expected int) error {
	failed := 0

	for _, report := range reports {
		if !report.Passed {
			failed++
		}
	}

	logger.InfoKV(ctx, "Scenarios finished", "passed", len(reports)-failed, "failed", failed, "total", expected)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScenariosFailed, failed, len(reports))
	}

	if len(reports) < expected {
		return fmt.Errorf("%w: only %d of %d ran", ErrScenariosFailed, len(reports), expected)
	}

	return nil
}

// startServers launches the configured network endpoints on a group that
// ends once ctx is done. A failing endpoint stops the run.
func startServers(
	ctx context.Context,
	stop context.CancelFunc,
	cfg *config.Config,
	feed *composer.Feed,
) *errgroup.Group {
	group, groupCtx := errgroup.WithContext(ctx)

	serve := func(fn func(ctx context.Context) error) {
		group.Go(func() error {
			err := fn(groupCtx)
			if err != nil {
				stop()
			}

			return err
		})
	}

	if cfg.TriggerAddress != "" {
		serve(func(ctx context.Context) error {
			return serveTriggers(ctx, cfg.TriggerAddress, feed)
		})
	}

	if cfg.MetricsAddress != "" {
		serve(func(ctx context.Context) error {
			return metrics.Serve(ctx, cfg.MetricsAddress)
		})
	}

	return group
}

// serveTriggers exposes the trigger feed until ctx is done.
func serveTriggers(ctx context.Context, address string, feed *composer.Feed) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterTriggerServiceServer(grpcServer, api.NewServer(feed))

	logger.InfoKV(ctx, "Trigger feed listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Trigger feed stopped")

	return nil
}
