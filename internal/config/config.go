// Package config loads service configuration from the environment.
// A local .env file is honored in development; real deployments set
// environment variables directly.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	// PortalBaseURL is where the location portal is served; session links
	// handed to the bot point here.
	PortalBaseURL string `env:"PORTAL_BASE_URL"`
	// BotAPIKey authenticates the chat bot when it requests portal sessions.
	BotAPIKey string `env:"BOT_API_KEY"`

	DiscordBotToken  string `env:"DISCORD_BOT_TOKEN"`
	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	// RedisURL is optional; without it searches are cached per instance only.
	RedisURL string `env:"REDIS_URL"`

	SessionTTL       time.Duration `env:"SESSION_TTL" default:"15m"`
	SessionSingleUse bool          `env:"SESSION_SINGLE_USE" default:"false"`

	SearchRadiusMiles int `env:"SEARCH_RADIUS_MILES" default:"5"`
	SearchLimit       int `env:"SEARCH_LIMIT" default:"8"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"PORTAL_BASE_URL":     cfg.PortalBaseURL,
		"BOT_API_KEY":         cfg.BotAPIKey,
		"DISCORD_BOT_TOKEN":   cfg.DiscordBotToken,
		"GOOGLE_MAPS_API_KEY": cfg.GoogleMapsAPIKey,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, err := url.ParseRequestURI(cfg.PortalBaseURL); err != nil {
		return fmt.Errorf("PORTAL_BASE_URL must be a valid URL: %w", err)
	}

	if cfg.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m, got %s", cfg.SessionTTL)
	}
	if cfg.SearchRadiusMiles < 1 || cfg.SearchRadiusMiles > 50 {
		return fmt.Errorf("SEARCH_RADIUS_MILES must be between 1 and 50, got %d", cfg.SearchRadiusMiles)
	}
	if cfg.SearchLimit < 1 || cfg.SearchLimit > 25 {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and 25, got %d", cfg.SearchLimit)
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
