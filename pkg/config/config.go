// Package config loads the vocabfeed configuration file with defaults and
// explicit validation. Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "vocabfeed.yaml"

// RetryConfig configures the bounded backoff applied to transient endpoint
// failures.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// BaseDelay returns the configured base delay as a duration.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// Config is the full vocabfeed configuration.
type Config struct {
	// Endpoint is the SPARQL query endpoint harvested from.
	Endpoint string `yaml:"endpoint"`

	// ExpectedHost is the authority collection URIs are expected to live
	// under; mismatches warn but do not fail.
	ExpectedHost string `yaml:"expected_host"`

	// DBPath is the SQLite translation store.
	DBPath string `yaml:"db_path"`

	// FeedDir is the base directory holding one feed directory per source.
	FeedDir string `yaml:"feed_dir"`

	// PrefixURI is the base URI fragments are published under.
	PrefixURI string `yaml:"prefix_uri"`

	// BatchSize is the page size of harvest fetches.
	BatchSize int `yaml:"batch_size"`

	Retry RetryConfig `yaml:"retry"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:     "http://vocab.nerc.ac.uk/sparql/",
		ExpectedHost: "vocab.nerc.ac.uk",
		DBPath:       "translations.db",
		FeedDir:      "data/LDES",
		PrefixURI:    "https://marine-term-translations.github.io",
		BatchSize:    1000,
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMS: 1000,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path falls
// back to DefaultFile in the working directory; a missing file there is fine
// and yields the defaults, while an explicitly named missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipelines cannot run with.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelayMS < 0 {
		return fmt.Errorf("retry.base_delay_ms must not be negative, got %d", c.Retry.BaseDelayMS)
	}
	return nil
}
