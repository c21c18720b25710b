package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/service/runner"
	"github.com/oshokin/taws-partitions/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// seed overrides the generator seed of the configuration.
	seed uint64
	// reportFile overrides the report path of the configuration.
	reportFile string
	// logLevel sets the global log level.
	logLevel string
	// logFormat selects console or JSON lines.
	logFormat string

	// rootCmd represents the base command for running the scenarios.
	rootCmd = &cobra.Command{
		Use:   "taws-runner [feature-file|directory|glob]...",
		Short: "Run TAWS scenarios against the alerter partition.",
		Long: `Runs the harness, the alerter and the monitor as partitions of one process.

Every scenario of the given feature files is pressed through the alerter:
the harness generates seeded frames, bends them with the scenario moulds
and checks each alert state against the scenario oracles while the monitor
watches both ports for late or missing answers.

Feature files can be given as arguments; without them the configured files
or the embedded Mode 1 suite are used. The process exits with non-zero
status when any scenario fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Configure(logLevel, logFormat); err != nil {
				return err
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			runnerOptions := &runner.Options{
				ConfigPath: configPath,
				Features:   args,
				ReportFile: reportFile,
			}

			if cmd.Flags().Changed("seed") {
				runnerOptions.Seed = seed
			}

			return runner.Run(ctx, runnerOptions)
		},
	}
)

// Execute runs the taws-runner CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "generator seed, overrides the configuration")
	rootCmd.Flags().StringVarP(&reportFile, "report", "r", "", "path of the JSON report, overrides the configuration")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", string(logger.FormatConsole), "log format: console or json")
}
