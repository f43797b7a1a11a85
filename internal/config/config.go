package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the terminal process needs. All values come from
// SIBUBUR_-prefixed environment variables with sane local defaults.
type Config struct {
	APIBaseURL            string `mapstructure:"API_BASE_URL"`
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	ListenAddr            string `mapstructure:"LISTEN_ADDR"`
	StateDir              string `mapstructure:"STATE_DIR"`
	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int    `mapstructure:"REDIS_DB"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	TerminalID            string `mapstructure:"TERMINAL_ID"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIBUBUR")
	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:3000/api")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("LISTEN_ADDR", "127.0.0.1:8977")
	v.SetDefault("STATE_DIR", ".sibubur")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TERMINAL_ID", "terminal-1")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("SIBUBUR_API_BASE_URL must not be empty")
	}
	if cfg.RequestTimeoutSeconds < 1 {
		cfg.RequestTimeoutSeconds = 30
	}
	return cfg, nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
