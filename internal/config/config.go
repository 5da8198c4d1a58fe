// Package config loads service configuration from an optional yaml file plus
// MISCITE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig contains basic HTTP service configuration.
type ServiceConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// APIConfig contains request-handling knobs for the recommendation endpoint.
type APIConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// RecommendConfig contains the selector tunables and the optional scoring
// policy file.
type RecommendConfig struct {
	MaxGlobalActions     int    `mapstructure:"max_global_actions"`
	MaxActionsPerSection int    `mapstructure:"max_actions_per_section"`
	ScorePolicyFile      string `mapstructure:"score_policy_file"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config is the root service configuration.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	API       APIConfig       `mapstructure:"api"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Load reads config from MISCITE_CONFIG (yaml, optional) with MISCITE_*
// environment overrides and defaults for everything else. Selector tunables
// are clamped to their minimum of 1.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("miscite")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service.port", 8080)
	v.SetDefault("service.read_timeout", 10*time.Second)
	v.SetDefault("service.write_timeout", 30*time.Second)
	v.SetDefault("service.graceful_timeout", 15*time.Second)
	v.SetDefault("service.max_body_bytes", int64(10<<20))
	v.SetDefault("api.rate_limit_rps", 10.0)
	v.SetDefault("api.rate_limit_burst", 20)
	v.SetDefault("recommend.max_global_actions", 5)
	v.SetDefault("recommend.max_actions_per_section", 3)
	v.SetDefault("recommend.score_policy_file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	if cfgPath := os.Getenv("MISCITE_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Recommend.MaxGlobalActions < 1 {
		cfg.Recommend.MaxGlobalActions = 1
	}
	if cfg.Recommend.MaxActionsPerSection < 1 {
		cfg.Recommend.MaxActionsPerSection = 1
	}
	return &cfg, nil
}
