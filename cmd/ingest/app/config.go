package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// IngestConfig represents ingestion pipeline settings
type IngestConfig struct {
	// Concurrency is the admission gate size: how many sessions run their
	// pipeline at once. Tune to what the store accepts.
	Concurrency int `yaml:"concurrency"`
	// ChunkSize is the number of samples per bulk write.
	ChunkSize int `yaml:"chunkSize"`
	// MaxRetries bounds retry attempts per failed chunk write.
	MaxRetries uint64 `yaml:"maxRetries"`
	// RetryInterval is the initial backoff between chunk-write retries.
	RetryInterval time.Duration `yaml:"retryInterval"`
	// UserID is recorded as the owning user on every ingested session.
	UserID string `yaml:"userID"`
	// Track and Car are optional session metadata applied to every file of
	// this run.
	Track string `yaml:"track"`
	Car   string `yaml:"car"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// LoadConfig reads and validates the yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}

	if config.Settings.LogLevel == "" {
		config.Settings.LogLevel = "info"
	}
	if config.Storage.DatabasePath == "" {
		return nil, fmt.Errorf("storage.databasePath is required")
	}

	return &config, nil
}
