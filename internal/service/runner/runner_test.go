package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/taws-partitions/internal/clock"
	"github.com/oshokin/taws-partitions/internal/config"
	repository "github.com/oshokin/taws-partitions/internal/repository/report"
	"github.com/oshokin/taws-partitions/internal/scenario"
)

// fakeProcess is a ps.Process with fixed fields.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

const failingFeature = `name: Broken expectations
scenarios:
  - name: Quiet while diving
    given:
      - the plane is flying
      - Mode 1 is armed
    when:
      - the rate of descent is at least 2000 feet per minute
      - the height above terrain is between 0 and 2500 feet
    then:
      - a Mode 1 caution alert is not emitted at all
`

// writeSettings stores a fast configuration in a temporary directory.
func writeSettings(t *testing.T, mutate func(cfg *config.Config)) (string, string) {
	t.Helper()

	dir := t.TempDir()

	cfg := config.Default()
	cfg.Seed = 1
	cfg.ReportFile = filepath.Join(dir, "report.json")

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return dir, path
}

// TestFindRival verifies only other processes with the same executable match.
func TestFindRival(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, executable: "taws-runner"},
		fakeProcess{pid: 11, executable: "bash"},
	}

	_, found := findRival(processList, 10, "taws-runner")
	require.False(t, found)

	rival, found := findRival(append(processList, fakeProcess{pid: 12, executable: "taws-runner"}), 10, "taws-runner")
	require.True(t, found)
	require.Equal(t, 12, rival.Pid())
}

// TestApplyOverrides verifies command line values win and a zero seed is replaced.
func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Seed = 0

	applyOverrides(cfg, &Options{})
	require.NotZero(t, cfg.Seed)
	require.Empty(t, cfg.Features)

	applyOverrides(cfg, &Options{Features: []string{"a.yaml"}, Seed: 42, ReportFile: "out.json"})
	require.Equal(t, []string{"a.yaml"}, cfg.Features)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, "out.json", cfg.ReportFile)
}

// TestSummarize verifies failed or missing scenarios surface as ErrScenariosFailed.
func TestSummarize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	require.NoError(t, summarize(ctx, []scenario.Report{{Passed: true}}, 1))
	require.ErrorIs(t, summarize(ctx, []scenario.Report{{Passed: true}, {Passed: false}}, 2), ErrScenariosFailed)
	require.ErrorIs(t, summarize(ctx, []scenario.Report{{Passed: true}}, 2), ErrScenariosFailed)
}

// TestRun_DefaultFeatures verifies the embedded suite passes and its report is saved.
func TestRun_DefaultFeatures(t *testing.T) {
	t.Parallel()

	_, path := writeSettings(t, nil)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	err = Run(context.Background(), &Options{
		ConfigPath:         path,
		Clock:              clock.Fake(time.Unix(0, 0)),
		SkipExclusiveCheck: true,
	})
	require.NoError(t, err)

	reports, err := repository.NewFileRepository(cfg.ReportFile).Load(context.Background())
	require.NoError(t, err)

	scenarios, err := scenario.DefaultFeatures()
	require.NoError(t, err)
	require.Len(t, reports, len(scenarios))

	for _, report := range reports {
		require.True(t, report.Passed, "%s: %s", report.Scenario, report.Failure)
	}
}

// TestRun_FailingFeature verifies a violated oracle fails the run but still writes the report.
func TestRun_FailingFeature(t *testing.T) {
	t.Parallel()

	dir, path := writeSettings(t, nil)

	feature := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(feature, []byte(failingFeature), 0o600))

	report := filepath.Join(dir, "override.json")

	err := Run(context.Background(), &Options{
		ConfigPath:         path,
		Features:           []string{feature},
		ReportFile:         report,
		Clock:              clock.Fake(time.Unix(0, 0)),
		SkipExclusiveCheck: true,
	})
	require.ErrorIs(t, err, ErrScenariosFailed)

	reports, err := repository.NewFileRepository(report).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.False(t, reports[0].Passed)
	require.NotEmpty(t, reports[0].Failure)
}

// TestRun_MissingSettings verifies an explicit settings path must exist.
func TestRun_MissingSettings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath:         filepath.Join(t.TempDir(), "absent.yaml"),
		SkipExclusiveCheck: true,
	})
	require.ErrorContains(t, err, "load settings")
}

// TestRun_BadMonitorSpec verifies an unreadable monitor specification stops the run.
func TestRun_BadMonitorSpec(t *testing.T) {
	t.Parallel()

	_, path := writeSettings(t, func(cfg *config.Config) {
		cfg.MonitorSpec = "absent-monitor.yaml"
	})

	err := Run(context.Background(), &Options{
		ConfigPath:         path,
		Clock:              clock.Fake(time.Unix(0, 0)),
		SkipExclusiveCheck: true,
	})
	require.ErrorContains(t, err, "load monitor specification")
}
