// Package config builds the slowserve configuration from flags and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hotafrika/slowserve"
)

// EnvPrefix is the prefix of the environment variables read by Load,
// e.g. SLOWSERVE_ROOT_DIR.
const EnvPrefix = "SLOWSERVE"

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	slowserve.Config `mapstructure:",squash" yaml:",inline"`

	LogLevel  string `mapstructure:"log-level" yaml:"log-level"`
	LogFormat string `mapstructure:"log-format" yaml:"log-format"`
}

// Load reads the configuration. Explicitly set flags win over environment
// variables, which win over the defaults. No configuration file is read.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the server settings and the logging settings.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	def := slowserve.DefaultConfig()
	v.SetDefault("speed", def.Speed)
	v.SetDefault("interval", def.IntervalMs)
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("root-dir", def.RootDir)
	v.SetDefault("cors", def.CORS)
	v.SetDefault("total-speed", def.TotalSpeed)

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", FormatText)
}
