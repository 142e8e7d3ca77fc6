package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quantmind-br/glopen/internal/domain"
)

// DefaultHost is the public GitLab instance. Tokens for it come from the
// unsuffixed GITLAB_TOKEN variable.
const DefaultHost = "gitlab.com"

// tokenEnvPrefix is the prefix for per-host token variables.
const tokenEnvPrefix = "GITLAB_TOKEN"

// Config represents the application configuration
type Config struct {
	Editor  string        `mapstructure:"editor" yaml:"editor"`
	TempDir string        `mapstructure:"temp_dir" yaml:"temp_dir"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// v keeps the loaded settings around for host-keyed token lookup,
	// which cannot be expressed as a fixed struct field.
	v *viper.Viper
}

// HTTPConfig contains API client settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TokenEnvVar derives the variable name holding the token for a host:
// the default host uses GITLAB_TOKEN, any other host uses GITLAB_TOKEN_
// plus the uppercased host with dots replaced by underscores, e.g.
// gitlab.example.com -> GITLAB_TOKEN_GITLAB_EXAMPLE_COM.
func TokenEnvVar(host string) string {
	if host == "" || strings.EqualFold(host, DefaultHost) {
		return tokenEnvPrefix
	}
	return tokenEnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(host, ".", "_"))
}

// TokenFor resolves the credentials for a host from the loaded settings.
// A missing variable is not an error: the token is simply empty and API
// calls run anonymously.
func (c *Config) TokenFor(host string) domain.Credentials {
	token := ""
	if c.v != nil {
		token = c.v.GetString(strings.ToLower(TokenEnvVar(host)))
	}
	return domain.Credentials{Host: host, Token: token}
}

// Validate validates the configuration and applies fallback defaults
func (c *Config) Validate() error {
	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}
