package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	DefaultHTTPTimeout = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".glopen"
	}
	return filepath.Join(home, ".glopen")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		TempDir: os.TempDir(),
		HTTP: HTTPConfig{
			Timeout: DefaultHTTPTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
