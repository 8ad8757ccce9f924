// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	FetchBackend  string        `mapstructure:"FETCH_BACKEND"`
	FetchTimeout  time.Duration `mapstructure:"FETCH_TIMEOUT"`
	SiteDelay     time.Duration `mapstructure:"SITE_DELAY"`
	UserAgent     string        `mapstructure:"USER_AGENT"`
	PostgresURL   string        `mapstructure:"POSTGRES_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
}

// Load reads configuration from the environment. A .env file is honored when
// present so local runs don't need exported variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("FETCH_BACKEND", "static")
	viper.SetDefault("FETCH_TIMEOUT", "30s")
	viper.SetDefault("SITE_DELAY", "1s")
	viper.SetDefault("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL", "10m")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
