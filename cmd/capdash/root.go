package main

import (
	"os"

	"github.com/spf13/cobra"

	"capdash/internal/config"
	"capdash/internal/logging"
	"capdash/internal/version"
)

var (
	// rootFlag points at the project root holding .capdash/
	rootFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "capdash",
	Short: "capdash - Capability Hypergraph Dashboard Backend",
	Long: `capdash derives presentation-ready views from the raw capability
hypergraph emitted by the learning system: recency-bucketed capabilities,
the layered flow structure of their latest runs, fuzzy search filtering,
and snapshot-over-snapshot change detection.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("capdash version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root containing the .capdash directory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}

// loadConfig resolves the effective configuration for this invocation.
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(rootFlag)
}

// newLogger builds the logger from config plus overrides.
// Precedence: --log-level flag > CAPDASH_LOG_LEVEL env > config.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if env := os.Getenv("CAPDASH_LOG_LEVEL"); env != "" {
		level = env
	}
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(level),
	})
}
