package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ibrahimansoor/location-bot/internal/checkin"
	"github.com/ibrahimansoor/location-bot/internal/config"
	"github.com/ibrahimansoor/location-bot/internal/discord"
	"github.com/ibrahimansoor/location-bot/internal/domain"
	"github.com/ibrahimansoor/location-bot/internal/locator"
	"github.com/ibrahimansoor/location-bot/internal/logging"
	"github.com/ibrahimansoor/location-bot/internal/places"
	"github.com/ibrahimansoor/location-bot/internal/redis"
	"github.com/ibrahimansoor/location-bot/internal/server"
	"github.com/ibrahimansoor/location-bot/internal/session"
	"github.com/ibrahimansoor/location-bot/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", version.Get().String(),
	)

	// Redis is optional; without it searches fall back to the in-process cache.
	var (
		placeCache domain.PlaceCache
		pinger     server.RedisPinger
	)
	if cfg.RedisURL != "" {
		redisClient := setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
		placeCache = redis.NewPlaceCache(redisClient)
		pinger = redisClient
	} else {
		slog.Info("REDIS_URL not set, using in-process search cache only")
	}

	sessions := session.NewStore(clock, cfg.SessionTTL)
	provider := places.NewProvider(cfg.GoogleMapsAPIKey)
	loc := locator.New(provider, placeCache)
	sink := discord.NewClient(cfg.DiscordBotToken)
	coordinator := checkin.NewCoordinator(sessions, sink, clock, cfg.SessionSingleUse)

	srv := server.NewServer(cfg, sessions, loc, coordinator, pinger)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
