// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	ListenAddr       string        `mapstructure:"LISTEN_ADDR"`
	DBURL            string        `mapstructure:"DB_URL"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	WebhookBaseURL   string        `mapstructure:"WEBHOOK_BASE_URL"`
	GithubTimeout    time.Duration `mapstructure:"GITHUB_TIMEOUT"`
	GithubAPIBaseURL string        `mapstructure:"GITHUB_API_BASE_URL"`
}

// WebhookCallbackURL is the exact callback URL this deployment registers on
// repository webhooks. Disconnect matches hooks against it verbatim.
func (c *Config) WebhookCallbackURL() string {
	return strings.TrimRight(c.WebhookBaseURL, "/") + "/api/webhooks/github"
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("GITHUB_TIMEOUT", "15s")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is a required configuration field")
	}
	if cfg.WebhookBaseURL == "" {
		return nil, errors.New("WEBHOOK_BASE_URL is a required configuration field")
	}
	if cfg.GithubTimeout <= 0 {
		return nil, errors.New("GITHUB_TIMEOUT must be a positive duration")
	}

	return &cfg, nil
}
