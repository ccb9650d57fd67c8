package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gematrix/internal/numtheory"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = ".gematrix/config.yaml"

// DefaultMatchDBSource is the published word/value sheet exported as CSV.
const DefaultMatchDBSource = "https://docs.google.com/spreadsheets/d/1OMCA16fEZJqic6JoZKFBhYy3wnB0Rr346VdwQYw_gzM/export?format=csv"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all gematrix configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	NumberTheory NumberTheoryConfig `yaml:"number_theory"`
	Chronology   ChronologyConfig   `yaml:"chronology"`
	MatchDB      MatchDBConfig      `yaml:"matchdb"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// NumberTheoryConfig bounds the classifier's searches.
type NumberTheoryConfig struct {
	NeighborSearchLimit   int   `yaml:"neighbor_search_limit"`
	PalindromeSearchLimit int   `yaml:"palindrome_search_limit"`
	PrimeIndexCeiling     int64 `yaml:"prime_index_ceiling"` // 1..numtheory.MaxPrimeIndexCeiling
}

// ChronologyConfig configures the day-count matcher.
type ChronologyConfig struct {
	// ReferenceDate is used when the CLI gets no --reference; empty means today.
	ReferenceDate string `yaml:"reference_date"`
	Workers       int    `yaml:"workers"`
	ChunkSize     int    `yaml:"chunk_size"` // entities per worker task
}

// MatchDBConfig configures the match database loader.
type MatchDBConfig struct {
	Source        string `yaml:"source"` // http(s) URL or file path
	Timeout       string `yaml:"timeout"`
	ProgressEvery int    `yaml:"progress_every"` // rows between parse progress reports
	WatchDebounce string `yaml:"watch_debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "gematrix",
		Version: "0.3.0",

		NumberTheory: NumberTheoryConfig{
			NeighborSearchLimit:   1000,
			PalindromeSearchLimit: 2000,
			PrimeIndexCeiling:     numtheory.DefaultPrimeIndexCeiling,
		},

		Chronology: ChronologyConfig{
			Workers:   4,
			ChunkSize: 16,
		},

		MatchDB: MatchDBConfig{
			Source:        DefaultMatchDBSource,
			Timeout:       "120s",
			ProgressEvery: 50000,
			WatchDebounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if src := os.Getenv("GEMATRIX_MATCHDB_SOURCE"); src != "" {
		c.MatchDB.Source = src
	}
	if d := os.Getenv("GEMATRIX_MATCHDB_TIMEOUT"); d != "" {
		c.MatchDB.Timeout = d
	}
	if lvl := os.Getenv("GEMATRIX_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if f := os.Getenv("GEMATRIX_LOG_FORMAT"); f != "" {
		c.Logging.Format = f
	}
	if v := os.Getenv("GEMATRIX_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// Validate checks values the engines cannot work with.
func (c *Config) Validate() error {
	if c.NumberTheory.NeighborSearchLimit < 1 {
		return fmt.Errorf("%w: neighbor_search_limit must be >= 1", ErrInvalidConfig)
	}
	if c.NumberTheory.PalindromeSearchLimit < 1 {
		return fmt.Errorf("%w: palindrome_search_limit must be >= 1", ErrInvalidConfig)
	}
	if c.NumberTheory.PrimeIndexCeiling < 1 || c.NumberTheory.PrimeIndexCeiling > numtheory.MaxPrimeIndexCeiling {
		return fmt.Errorf("%w: prime_index_ceiling must be between 1 and %d", ErrInvalidConfig, numtheory.MaxPrimeIndexCeiling)
	}
	if c.Chronology.Workers < 1 {
		return fmt.Errorf("%w: chronology workers must be >= 1", ErrInvalidConfig)
	}
	if c.Chronology.ChunkSize < 1 {
		return fmt.Errorf("%w: chronology chunk_size must be >= 1", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.MatchDB.Source) == "" {
		return fmt.Errorf("%w: matchdb source is required", ErrInvalidConfig)
	}
	if c.MatchDB.ProgressEvery < 1 {
		return fmt.Errorf("%w: matchdb progress_every must be >= 1", ErrInvalidConfig)
	}
	if _, err := time.ParseDuration(c.MatchDB.Timeout); err != nil {
		return fmt.Errorf("%w: matchdb timeout: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// MatchDBTimeout returns the match database load timeout as a duration.
func (c *Config) MatchDBTimeout() time.Duration {
	d, err := time.ParseDuration(c.MatchDB.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// WatchDebounce returns the watcher debounce window as a duration.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.MatchDB.WatchDebounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
