// Package main is the entry point for the SnapTrip API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pkordes/snaptrip/backend/internal/auth"
	"github.com/pkordes/snaptrip/backend/internal/config"
	"github.com/pkordes/snaptrip/backend/internal/handler"
	"github.com/pkordes/snaptrip/backend/internal/middleware"
	"github.com/pkordes/snaptrip/backend/internal/service"
	"github.com/pkordes/snaptrip/backend/internal/session"
	"github.com/pkordes/snaptrip/backend/internal/steps"
	"github.com/pkordes/snaptrip/backend/internal/travelapi"
	"github.com/pkordes/snaptrip/backend/internal/weather"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Stores -----------------------------------------------------------
	cache, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open local cache", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeCache()

	docs, images, closeRemote, err := openRemote(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open remote store", "backend", cfg.RemoteBackend, "error", err)
		os.Exit(1)
	}
	defer closeRemote()

	stepStore, err := steps.NewFileStore(cfg.StepStatePath)
	if err != nil {
		slog.Error("failed to open step state", "path", cfg.StepStatePath, "error", err)
		os.Exit(1)
	}

	// --- External APIs ----------------------------------------------------
	generator, err := travelapi.NewClient(cfg.TravelAPIURL)
	if err != nil {
		slog.Error("invalid travel api url", "error", err)
		os.Exit(1)
	}
	forecasts, err := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	if err != nil {
		slog.Error("invalid weather api url", "error", err)
		os.Exit(1)
	}
	if cfg.WeatherAPIKey == "" {
		slog.Warn("WEATHER_API_KEY not set, weather refresh disabled")
	}

	// --- Sessions ---------------------------------------------------------
	registry := session.NewRegistry(session.Deps{
		Trips:     service.NewTripService(docs, cache, logger),
		Journal:   service.NewJournalService(docs, cache, logger),
		Images:    images,
		Generator: generator,
		Weather:   forecasts,
		Steps:     steps.NewCounter(stepStore),
		Logger:    logger,
	})

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		slog.Error("invalid jwt secret", "error", err)
		os.Exit(1)
	}

	// --- Router -----------------------------------------------------------
	// RequestID must precede the logger; the logger must precede auth so the
	// user id reaches the log line.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewAuthHandler(verifier, "/healthz", "/openapi.yaml"))

	handler.NewServer(handler.FromRegistry(registry), logger).Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout covers itinerary generation, which may take up to a
	// minute. Event streams clear their own deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr,
			"cache", cfg.CacheBackend, "remote", cfg.RemoteBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
