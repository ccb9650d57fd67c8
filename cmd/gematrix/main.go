// Package main implements the gematrix CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gematrix/internal/config"
	"gematrix/internal/logging"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	outputFormat string
	timeout      time.Duration

	// Logger instance
	logger *zap.Logger

	// Resolved configuration. Commands read it after PersistentPreRunE.
	cfg = config.DefaultConfig()
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "gematrix",
	Short: "gematrix - symbolic values for words, numbers and dates",
	Long: `gematrix computes letter-cipher totals for text, classifies numbers,
counts days between significant dates and looks values up in a word/value
database.

Results print as a table by default; use --output json or --output yaml
for machine-readable output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		if verbose {
			loaded.Logging.DebugMode = true
			loaded.Logging.Level = "debug"
		}
		if err := logging.Initialize(loaded.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		cfg = loaded

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Boot("%s %s", loaded.Name, loaded.Version)
		logging.BootDebug("config %s loaded (output=%s, timeout=%s)", configPath, outputFormat, timeout)
		logging.Get(logging.CategoryCLI).Debug("running %s", cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(
		cipherCmd,
		schemesCmd,
		numberCmd,
		chronologyCmd,
		spanCmd,
		numerologyCmd,
		lookupCmd,
		watchCmd,
	)
}

// commandContext returns a context bounded by --timeout that is also
// canceled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
