// Package config provides configuration types and defaults for loupe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loupe/internal/log"
	"loupe/internal/tracing"
)

// Config holds all configuration options for loupe.
type Config struct {
	// AutoRefresh re-fetches worktree views when files change on disk.
	AutoRefresh bool `mapstructure:"auto_refresh"`
	// DebounceMs is the filesystem quiescence window in milliseconds.
	DebounceMs int `mapstructure:"debounce_ms"`
	// LogLimit caps how many commits the history view loads.
	LogLimit int            `mapstructure:"log_limit"`
	UI       UIConfig       `mapstructure:"ui"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Tracing  tracing.Config `mapstructure:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	// WordDiff highlights changed words inside modified line pairs.
	WordDiff bool `mapstructure:"word_diff"`
	// CommitGraph draws branch lanes beside the history view.
	CommitGraph bool `mapstructure:"commit_graph"`
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode string `mapstructure:"mode"`

	// Colors allows overriding individual color tokens, e.g.
	//   colors:
	//     diff.added: "#73F59F"
	Colors map[string]string `mapstructure:"colors"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoRefresh: true,
		DebounceMs:  400,
		LogLimit:    500,
		UI: UIConfig{
			ShowStatusBar: true,
			WordDiff:      true,
			CommitGraph:   true,
		},
		Theme:   ThemeConfig{},
		Tracing: tracing.DefaultConfig(),
	}
}

// Debounce returns the configured quiescence window as a duration.
func (c Config) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(c Config) error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be non-negative, got %d", c.DebounceMs)
	}
	if c.LogLimit < 0 {
		return fmt.Errorf("log_limit must be non-negative, got %d", c.LogLimit)
	}
	if c.Theme.Mode != "" && c.Theme.Mode != "light" && c.Theme.Mode != "dark" {
		return fmt.Errorf("theme.mode must be \"light\", \"dark\", or empty, got %q", c.Theme.Mode)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}
	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/loupe/traces/traces.jsonl or empty string if home dir
// unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "loupe", "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Loupe Configuration

# Re-fetch worktree views automatically when files change
auto_refresh: true

# Filesystem quiescence window before a change burst triggers a refresh
debounce_ms: 400

# Maximum number of commits loaded into the history view
log_limit: 500

# UI settings
ui:
  show_status_bar: true  # Show status bar at bottom
  word_diff: true        # Highlight changed words inside modified lines
  commit_graph: true     # Draw branch lanes beside the history view

# Theme configuration
theme:
  # Force light or dark mode; empty uses terminal detection
  # mode: dark
  #
  # Override specific colors:
  # colors:
  #   diff.added: "#73F59F"
  #   diff.removed: "#FF8787"
  #   text.muted: "#888888"

# Tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp
#   file_path: ~/.config/loupe/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
