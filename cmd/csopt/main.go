package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/csopt/internal/api"
	"github.com/MikeSquared-Agency/csopt/internal/config"
	"github.com/MikeSquared-Agency/csopt/internal/events"
	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/store"
	"github.com/MikeSquared-Agency/csopt/internal/telemetry"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(ctx, db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if cfg.MigrateOnStart {
		if err := migrate(ctx, db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("csopt starting", "port", cfg.Port, "llm_provider", cfg.LLMProvider)

	// LLM client
	completer, err := llm.New(cfg.LLMProvider, cfg.LLMAPIKey(), cfg.LLMModel(), cfg.LLMBaseURL)
	if err != nil {
		slog.Error("failed to create llm client", "error", err)
		os.Exit(1)
	}
	slog.Info("llm client ready", "provider", cfg.LLMProvider, "model", cfg.LLMModel())

	// Tracing (optional)
	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, "csopt", version, slog.Default())
	if err != nil {
		slog.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	// NATS (optional; events are dropped when not configured)
	var pub events.Publisher = events.Nop{}
	if cfg.NatsURL != "" {
		nc, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		pub = nc
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, domain events disabled")
	}

	// HTTP API
	srv := api.NewServer(db, completer, api.Options{
		Port:        cfg.Port,
		MaxTokens:   cfg.LLMMaxTokens,
		CORSOrigins: cfg.CORSOrigins,
		Events:      pub,
		Logger:      slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("csopt ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("tracing shutdown error", "error", err)
	}
	slog.Info("csopt stopped")
}

func migrate(ctx context.Context, db *store.Store) error {
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	n, err := db.Seed(ctx)
	if err != nil {
		return err
	}
	slog.Info("database migrated", "seeded_rules", n)
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
