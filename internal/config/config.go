// Package config loads and validates capdash configuration from
// .capdash/config.json, with CAPDASH_* environment overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-project directory holding config and the
// snapshot archive database.
const ConfigDirName = ".capdash"

// Config represents the complete capdash configuration
type Config struct {
	Version int           `json:"version" mapstructure:"version"`
	Archive ArchiveConfig `json:"archive" mapstructure:"archive"`
	View    ViewConfig    `json:"view" mapstructure:"view"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ArchiveConfig controls the snapshot archive
type ArchiveConfig struct {
	// Keep bounds how many snapshots Prune retains
	Keep int `json:"keep" mapstructure:"keep"`
	// CompressionLevel is the zstd level used for stored payloads (1-4,
	// mapping to the driver's fastest..best presets)
	CompressionLevel int `json:"compressionLevel" mapstructure:"compressionLevel"`
}

// ViewConfig controls presentation-side derivation
type ViewConfig struct {
	// HighlightMs is how long the rendering layer highlights freshly
	// observed capabilities
	HighlightMs int `json:"highlightMs" mapstructure:"highlightMs"`
	// Palette is the server color rotation; empty uses the built-in one
	Palette []string `json:"palette,omitempty" mapstructure:"palette"`
	// Recency holds the bucket thresholds
	Recency RecencyConfig `json:"recency" mapstructure:"recency"`
}

// RecencyConfig holds the recency bucket thresholds
type RecencyConfig struct {
	TodayHours int `json:"todayHours" mapstructure:"todayHours"`
	WeekDays   int `json:"weekDays" mapstructure:"weekDays"`
	MonthDays  int `json:"monthDays" mapstructure:"monthDays"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Archive: ArchiveConfig{
			Keep:             50,
			CompressionLevel: 2,
		},
		View: ViewConfig{
			HighlightMs: 600,
			Recency: RecencyConfig{
				TodayHours: 24,
				WeekDays:   7,
				MonthDays:  30,
			},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.capdash/config.json. A
// missing file is not an error: defaults apply, still subject to
// environment overrides.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("archive.keep", defaults.Archive.Keep)
	v.SetDefault("archive.compressionLevel", defaults.Archive.CompressionLevel)
	v.SetDefault("view.highlightMs", defaults.View.HighlightMs)
	v.SetDefault("view.recency.todayHours", defaults.View.Recency.TodayHours)
	v.SetDefault("view.recency.weekDays", defaults.View.Recency.WeekDays)
	v.SetDefault("view.recency.monthDays", defaults.View.Recency.MonthDays)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDirName))

	v.SetEnvPrefix("CAPDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.capdash/config.json, creating
// the directory if needed.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Archive.Keep < 1 {
		return &ConfigError{Field: "archive.keep", Message: "must keep at least one snapshot"}
	}
	if c.Archive.CompressionLevel < 1 || c.Archive.CompressionLevel > 4 {
		return &ConfigError{Field: "archive.compressionLevel", Message: "must be between 1 and 4"}
	}
	r := c.View.Recency
	if r.TodayHours <= 0 || r.WeekDays <= 0 || r.MonthDays <= 0 {
		return &ConfigError{Field: "view.recency", Message: "thresholds must be positive"}
	}
	if r.WeekDays*24 <= r.TodayHours || r.MonthDays <= r.WeekDays {
		return &ConfigError{Field: "view.recency", Message: "thresholds must be strictly increasing"}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
