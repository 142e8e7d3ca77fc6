package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults.
// A missing config file is not an error; neither is a missing token or
// editor key, so the zero-config case still works for public repos.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (a missing one is fine)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, err
		}
	}

	// No env prefix: the classic GITLAB_TOKEN, GITLAB_TOKEN_<HOST> and
	// EDITOR variables are read as-is.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Read the editor through viper directly so the EDITOR environment
	// variable wins even when no config file registered the key.
	cfg.Editor = v.GetString("editor")

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.v = v
	return &cfg, nil
}

// FromViper builds a Config backed by an existing viper instance. Used by
// tests to inject settings without touching the filesystem or environment.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Editor = v.GetString("editor")
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("editor", "")
	v.SetDefault("temp_dir", "")
	v.SetDefault("http.timeout", DefaultHTTPTimeout)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
