package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/levelup-app/reward-engine/internal/config"
	"github.com/levelup-app/reward-engine/internal/database"
	"github.com/levelup-app/reward-engine/internal/database/postgres"
	"github.com/levelup-app/reward-engine/internal/event"
	"github.com/levelup-app/reward-engine/internal/logger"
	"github.com/levelup-app/reward-engine/internal/loot"
	"github.com/levelup-app/reward-engine/internal/reward"
	"github.com/levelup-app/reward-engine/internal/server"
)

const (
	dbMaxIdleTime   = 30 * time.Minute
	dbMaxLifetime   = time.Hour
	shutdownTimeout = 10 * time.Second

	eventMaxRetries = 3
	eventRetryDelay = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)

	pool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var generator loot.Generator
	if cfg.DropTables != "" {
		generator, err = loot.NewGeneratorFromFile(cfg.DropTables, nil)
	} else {
		generator, err = loot.NewGenerator(nil, nil)
	}
	if err != nil {
		logger.Error("Failed to build drop generator", "error", err)
		os.Exit(1)
	}

	bus := event.NewResilientPublisher(event.NewMemoryBus(), event.ResilientConfig{
		MaxRetries:     eventMaxRetries,
		RetryDelay:     eventRetryDelay,
		DeadLetterPath: cfg.DeadLetterPath,
	})

	repo := postgres.NewRewardRepository(pool)
	rewardService := reward.NewService(repo, generator, bus)

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, pool, rewardService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
