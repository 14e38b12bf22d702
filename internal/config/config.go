// Package config loads rat's configuration from defaults, an optional
// ~/.rat/config.yaml, and RAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for all tunables.
const (
	DefaultDebounceMs         = 500
	DefaultTailWindowBytes    = 50 * 1024
	DefaultActivityWindowMins = 5
	DefaultProcessPattern     = "claude"
	DefaultLogLevel           = "warn"
)

// Config carries the tunables of the log-ingestion core and the CLI.
type Config struct {
	// DebounceMs is the watcher's per-file quiet period in milliseconds.
	DebounceMs int `mapstructure:"debounce_ms"`

	// TailWindowBytes bounds the latest-record tail read.
	TailWindowBytes int `mapstructure:"tail_window_bytes"`

	// ActivityWindowMinutes bounds log recency for a session to count as
	// active.
	ActivityWindowMinutes int `mapstructure:"activity_window_minutes"`

	// ProcessPattern is matched against the process table to decide
	// whether the agent is running.
	ProcessPattern string `mapstructure:"process_pattern"`

	// ProjectsDir overrides Claude's projects root (default
	// ~/.claude/projects).
	ProjectsDir string `mapstructure:"projects_dir"`

	// LogLevel is the zerolog level for diagnostic output.
	LogLevel string `mapstructure:"log_level"`
}

// Dir is rat's per-user state directory, ~/.rat.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rat"
	}
	return filepath.Join(home, ".rat")
}

// Load reads the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("debounce_ms", DefaultDebounceMs)
	v.SetDefault("tail_window_bytes", DefaultTailWindowBytes)
	v.SetDefault("activity_window_minutes", DefaultActivityWindowMins)
	v.SetDefault("process_pattern", DefaultProcessPattern)
	v.SetDefault("projects_dir", "")
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())

	v.SetEnvPrefix("RAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Debounce returns the watcher quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ActivityWindow returns the recency window for the active status.
func (c *Config) ActivityWindow() time.Duration {
	return time.Duration(c.ActivityWindowMinutes) * time.Minute
}
