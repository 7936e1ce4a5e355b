package main

import (
	"GreenPay/internal/adapters/eventbus"
	"GreenPay/internal/adapters/httpapi"
	"GreenPay/internal/adapters/metrics"
	"GreenPay/internal/adapters/postgres"
	"GreenPay/internal/adapters/security"
	"GreenPay/internal/bot"
	_ "GreenPay/internal/bot/handlers" // Registers handlers via init()
	"GreenPay/internal/shared/config"
	"GreenPay/internal/shared/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev(), cfg.LogLevel)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("bot_mode", cfg.Bot.Mode).
		Int64("reviewer_chat_id", cfg.ReviewerChatID).
		Msg("Configuration loaded")

	// 3. Initialize the Security Service
	secSvc, err := security.NewAESServiceFromHex(cfg.EncryptionKey, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
	}

	// 4. Shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Initialize Database
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to apply schema")
	}

	// 6. Repository, bus and metrics
	repo := postgres.NewSubmissionRepository(db, secSvc, &baseLogger)
	bus := eventbus.NewInMemoryEventBus(cfg.Bot.WorkerPoolSize, &baseLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.New(registry, &baseLogger).Subscribe(bus)

	// 7. Run the bot and the ops server until shutdown
	orchestrator := bot.NewOrchestrator(cfg, repo, bus, &baseLogger)
	opsServer := httpapi.NewOpsServer(cfg.OpsListenAddr, db, registry, &baseLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orchestrator.Start(gctx) })
	g.Go(func() error { return opsServer.Start(gctx) })

	baseLogger.Info().Msg("Application started")
	if err := g.Wait(); err != nil {
		baseLogger.Error().Err(err).Msg("Application stopped with error")
		os.Exit(1)
	}
	baseLogger.Info().Msg("Application stopped")
}
