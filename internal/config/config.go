// Package config loads the runtime configuration of the demo binaries using
// viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/nodo/pkg/log"
)

// Config is the top-level runtime configuration.
type Config struct {
	Log       log.Config      `mapstructure:"log"`
	Inspector InspectorConfig `mapstructure:"inspector"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// InspectorConfig selects where live reports are published.
type InspectorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// ScheduleConfig carries the demo schedule settings.
type ScheduleConfig struct {
	Period       time.Duration `mapstructure:"period"`
	MaxStepCount int           `mapstructure:"max_step_count"`
}

// Load reads the configuration from the given file. With an empty path a
// config file named "nodo" is looked up in the working directory and in
// /etc/nodo and read if found; otherwise only defaults and NODO_* environment
// variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("inspector.enabled", false)
	v.SetDefault("inspector.address", "tcp://127.0.0.1:12345")
	v.SetDefault("schedule.period", 100*time.Millisecond)
	v.SetDefault("schedule.max_step_count", 0)

	v.SetEnvPrefix("nodo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("nodo")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nodo")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
