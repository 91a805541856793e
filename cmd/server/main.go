// PromptDesk - password-gated Copilot prompt helper for Microsoft 365 users.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avereyes/promptdesk/internal/api"
	"github.com/avereyes/promptdesk/internal/config"
	"github.com/avereyes/promptdesk/internal/conversation"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/avereyes/promptdesk/internal/history"
	"github.com/avereyes/promptdesk/internal/middleware"
	"github.com/avereyes/promptdesk/internal/prompts"
	"github.com/avereyes/promptdesk/internal/session"
	"github.com/avereyes/promptdesk/internal/store"
	"github.com/avereyes/promptdesk/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
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

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	if cfg.Gateway.APIKey == "" {
		slog.Warn("No gateway API key configured, AI calls will fail until one is set")
	}

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	promptLog, err := history.NewLog(cfg.HistoryPath)
	if err != nil {
		slog.Error("Failed to initialize history log", "error", err)
		os.Exit(1)
	}

	promptSet, err := prompts.Load(cfg.PromptsPath)
	if err != nil {
		slog.Error("Failed to load prompt templates", "error", err)
		os.Exit(1)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	gw := gateway.NewOpenAIClient(cfg.Gateway)
	engine := conversation.NewEngine(gw, promptSet, promptLog, cfg.MaxClarifications)
	handler := api.NewHandler(repo, renderer, engine, gw, promptSet, promptLog, cfg)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(session.Middleware(repo, cfg.SessionTTL))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start session sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.StartSweeper(ctx, repo, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
