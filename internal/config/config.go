package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	CORSAllowOrigins    string
	InvalidationSubject string
	JWTSecret           string
	ContentsCacheTTL    time.Duration
	MutationRateLimit   int
	MutationRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LUMINA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LUMINA Dashboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("contents.cache_ttl", "60s")
	v.SetDefault("invalidation.subject", "lumina.cache.invalidate")
	v.SetDefault("mutation.rate_limit", 30)
	v.SetDefault("mutation.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("contents.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid contents cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("mutation.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid mutation rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		CORSAllowOrigins:    v.GetString("cors.allow_origins"),
		InvalidationSubject: v.GetString("invalidation.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		ContentsCacheTTL:    ttl,
		MutationRateLimit:   v.GetInt("mutation.rate_limit"),
		MutationRateWindow:  rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MutationRateLimit <= 0 {
		cfg.MutationRateLimit = 30
	}

	return cfg, nil
}
