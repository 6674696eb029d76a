package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/domain/release"
	"github.com/oshokin/mc-updater/internal/logger"
	"github.com/oshokin/mc-updater/internal/service/updater"
	"github.com/oshokin/mc-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel is the minimum level of printed messages.
	logLevel string

	// errUnknownLogLevel is returned for an unsupported --log-level value.
	errUnknownLogLevel = errors.New("unknown log level")

	// rootCmd updates the server when a newer release is published.
	rootCmd = &cobra.Command{
		Use:   "mc-updater",
		Short: "Keep the Minecraft server jar at the latest release",
		Long: `Checks the upstream version manifest for the latest release and, when the
version recorded in the marker file differs, stops the server session, backs up
the current jar, downloads the new one and starts the server again.

Meant to be run periodically, e.g. from cron, in the server directory.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevel,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, false)
		},
	}

	// checkCmd reports whether an update is available without applying it.
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report the stored and latest versions without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, true)
		},
	}
)

// Execute runs the mc-updater CLI and exits with non-zero status on error.
func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, checkOnly bool) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	options := &updater.Options{
		ConfigPath:     configPath,
		ConfigRequired: cmd.Flags().Changed("config"),
		CheckOnly:      checkOnly,
	}

	outcome, err := updater.Run(ctx, options)
	if err != nil {
		return err
	}

	if checkOnly {
		printOutcome(cmd, outcome)
	}

	return nil
}

func printOutcome(cmd *cobra.Command, outcome *release.Outcome) {
	stored := outcome.Previous
	if stored == "" {
		stored = "none"
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stored: %s\nlatest: %s\nstatus: %s\ndownload: %s\n",
		stored, outcome.Latest.Version, outcome.Status, outcome.Latest.DownloadURL)
}

func applyLogLevel(_ *cobra.Command, _ []string) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%q: %w", logLevel, errUnknownLogLevel)
	}

	logger.SetLevel(level)

	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to optional configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(checkCmd)
	version.AttachCobraVersionCommand(rootCmd)
}
