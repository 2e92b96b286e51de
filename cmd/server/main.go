package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/api"
	"github.com/welldanyogia/webrana-briefing-backend/internal/briefing"
	"github.com/welldanyogia/webrana-briefing-backend/internal/cache"
	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/database"
	"github.com/welldanyogia/webrana-briefing-backend/internal/llm"
	"github.com/welldanyogia/webrana-briefing-backend/internal/logger"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth/linking"
	"github.com/welldanyogia/webrana-briefing-backend/internal/provider"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
)

func main() {
	// Setup logger
	secLogger := logger.NewSecurityLogger()
	log := secLogger.GetLogger()
	slog.SetDefault(log)

	slog.Info("Starting Briefing Backend Server...")

	// Load configuration
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.LogConfig(log)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories and support services
	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	store := cache.NewStore(db)

	// Briefing pipeline
	generator := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	scorer := briefing.NewScorer(generator, cfg.ScoreChunkSize, log)
	factory := provider.NewFactory(cfg)
	aggregator := briefing.NewAggregator(accountRepo, factory, scorer, cfg.FetchLimit, log)
	briefingService := briefing.NewService(aggregator, snapshotRepo, cfg.SnapshotFreshness, cfg.SnapshotMaxAge, log)

	// OAuth account linking
	guard := linking.NewGuard(store, log)
	exchanger := linking.NewExchanger(cfg)
	linkingService := linking.NewService(accountRepo, userRepo, exchanger, guard, log)

	// Router
	var allowedOrigins []string
	if cfg.AllowedOrigins != "" {
		allowedOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	e := api.NewRouter(&api.RouterConfig{
		DB:              db,
		Config:          cfg,
		BriefingService: briefingService,
		LinkingService:  linkingService,
		Exchanger:       exchanger,
		Logger:          log,
		APIKey:          cfg.APIKey,
		AllowedOrigins:  allowedOrigins,
		EnableAuth:      cfg.APIKey != "",
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()
	slog.Info("server started", slog.Int("port", cfg.APIPort))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	if err := database.Close(db); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("Server stopped")
}
