package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/platinenmacher/pio-helpers/internal/config"
	"github.com/platinenmacher/pio-helpers/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string

	cfg *config.Config
	log = logger.Discard()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pio-helpers",
	Short: "Build and monitor helpers for PlatformIO firmware projects",
	Long: `pio-helpers bundles the small tools a PlatformIO firmware build relies on.

It performs the following functions:
  - Build version stamping from git describe (git-version)
  - Serial monitor log filtering by glob patterns (filter)`,
	SilenceUsage: true, // Don't print usage on errors unrelated to flags
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

// setup loads the configuration and builds the logger. A missing config
// file is only an error when --config was given explicitly.
func setup(cmd *cobra.Command) error {
	optional := !cmd.Flags().Changed("config")

	loaded, err := config.LoadOrDefault(cfgFile, optional)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	log = logger.New(cmd.ErrOrStderr(), logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Color:  cfg.Logging.Color,
	})
	slog.SetDefault(log)

	log.Debug("Configuration loaded", "path", cfgFile, "optional", optional)
	return nil
}
