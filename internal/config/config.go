package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/sovahealth/courier/internal/auth"
)

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MessageLimit int           `mapstructure:"message_limit"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	LogFile      string        `mapstructure:"log_file"`
}

// Load reads ~/.courier/config.yml, overlaid by COURIER_* env vars.
// A missing config file is fine; defaults cover everything except the
// base URL, which login stores in the session anyway.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(auth.Dir())

	v.SetEnvPrefix("COURIER")
	v.AutomaticEnv()

	v.SetDefault("poll_interval", 10*time.Second)
	v.SetDefault("message_limit", 200)
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("log_file", filepath.Join(auth.Dir(), "courier.log"))

	v.BindEnv("base_url")
	v.BindEnv("poll_interval")
	v.BindEnv("message_limit")
	v.BindEnv("http_timeout")
	v.BindEnv("log_file")

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PollInterval < time.Second {
		return fmt.Errorf("poll_interval must be at least 1s, got %s", c.PollInterval)
	}
	if c.MessageLimit <= 0 {
		return fmt.Errorf("message_limit must be positive, got %d", c.MessageLimit)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}
