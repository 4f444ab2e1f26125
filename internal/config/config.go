// Package config loads the process-level AttackForge client configuration
// from flags, environment variables and an optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultTimeout = 30 * time.Second

// Config is resolved once at process start and handed to the client.
type Config struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	APIKey    string        `mapstructure:"api_key" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`
	LogLevel  string        `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Tracing   bool          `mapstructure:"tracing"`
}

// Environment variables, keyed by config key.
var envBindings = map[string]string{
	"base_url":   "AF_BASE_URL",
	"api_key":    "AF_API_KEY",
	"timeout":    "AF_TIMEOUT",
	"user_agent": "AF_USER_AGENT",
	"log_level":  "LOG_LEVEL",
	"tracing":    "AF_TRACING",
}

// Flags, keyed by config key. Flags win over env and file values when set.
var flagBindings = map[string]string{
	"base_url":  "base-url",
	"api_key":   "api-key",
	"timeout":   "timeout",
	"log_level": "log-level",
	"tracing":   "tracing",
}

// Load resolves the configuration. configFile may be empty; flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("timeout", defaultTimeout)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot load config from file (%q): %w", configFile, err)
		}
	}

	// A bare number is a count of seconds.
	if secs, err := strconv.Atoi(strings.TrimSpace(v.GetString("timeout"))); err == nil {
		v.Set("timeout", time.Duration(secs)*time.Second)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and formats.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
