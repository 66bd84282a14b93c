package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/recall/internal/balance"
	"github.com/example/recall/internal/config"
	"github.com/example/recall/internal/database"
	"github.com/example/recall/internal/scheduler"
	"github.com/example/recall/internal/service"
)

func main() {
	configPath := flag.String("config", "recall.toml", "path to the TOML config file")
	resetUser := flag.Int64("reset-user", 0, "bulk-reset all memory states for the given user id and exit")
	flag.Parse()

	// .env is optional; the environment wins over the file either way.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg = config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	svc, err := service.New(db, service.Config{
		Params:   cfg.Engine,
		Balancer: balance.New(nil, cfg.DailyCapacity),
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to create scheduling service", zap.Error(err))
	}

	if *resetUser != 0 {
		n, err := svc.ResetUser(context.Background(), *resetUser)
		if err != nil {
			logger.Fatal("bulk reset failed", zap.Int64("user_id", *resetUser), zap.Error(err))
		}
		logger.Info("bulk reset complete", zap.Int64("user_id", *resetUser), zap.Int64("deleted", n))
		return
	}

	digest := scheduler.New(db, scheduler.LogNotifier{Logger: logger}, logger, scheduler.Config{
		StartHour: cfg.Digest.StartHour,
		EndHour:   cfg.Digest.EndHour,
	})
	if err := digest.Start(); err != nil {
		logger.Fatal("failed to start digest scheduler", zap.Error(err))
	}
	defer digest.Stop()

	logger.Info("scheduling engine up", zap.String("driver", cfg.Database.Driver))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
