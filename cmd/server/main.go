package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"pocket-wellness/internal/config"
	"pocket-wellness/internal/core"
	"pocket-wellness/internal/db"
	httpserver "pocket-wellness/internal/http"
	"pocket-wellness/internal/llm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Journaling is optional: without DATABASE_URL the orchestrator runs
	// entirely in memory.
	var journal httpserver.Journal
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to open database", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := dbConn.PingContext(ctx); err != nil {
			cancel()
			slog.Error("Failed to ping database", "error", err)
			os.Exit(1)
		}
		cancel()
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		journal = db.NewRepository(dbConn)
		slog.Info("Journaling enabled")
	}

	// Uses env: OPENAI_API_KEY, OPENAI_MODEL_CHAT, OPENAI_MODEL_SUMMARY.
	llmClient := llm.NewOpenAIClient()
	registry := core.NewRegistry(llmClient)
	recapper := core.NewRecapper(llmClient)
	srv := httpserver.NewServer(registry, recapper, journal, cfg.CompletionTimeout)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: completion calls can legitimately take most of
		// CompletionTimeout before the first byte is written.
	}

	go func() {
		slog.Info("Listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}
