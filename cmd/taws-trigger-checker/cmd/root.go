package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/service/checker"
	"github.com/oshokin/taws-partitions/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// interval is the time between two polls.
	interval time.Duration
	// exitOnTrigger stops the checker on the first active trigger.
	exitOnTrigger bool
	// verbose logs every poll.
	verbose bool

	// rootCmd represents the base command for polling the trigger feed.
	rootCmd = &cobra.Command{
		Use:   "taws-trigger-checker [server-address]",
		Short: "Watch the monitor triggers of a running taws-runner.",
		Long: `Polls the trigger feed of a taws-runner and logs every monitor trigger as it fires.

Server address can be provided as argument or loaded from the trigger_addr
setting of the configuration file. With --exit-on-trigger the checker stops
with non-zero status as soon as a trigger is active, which suits CI gates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			checkerOptions := &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  interval,
				ExitOnTrigger: exitOnTrigger,
				Verbose:       verbose,
			}

			return checker.Run(ctx, checkerOptions)
		},
	}
)

// Execute runs the taws-trigger-checker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", checker.DefaultPollInterval, "time between two polls")
	rootCmd.Flags().BoolVarP(&exitOnTrigger, "exit-on-trigger", "x", false, "exit with an error on the first active trigger")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every poll")
}
