package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-service/internal/config"
	"account-service/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Account service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Info("Configuration loaded",
		"db_host", cfg.DBHost,
		"db_name", cfg.DBName,
		"redis_enabled", cfg.RedisAddr != "",
		"max_accounts_per_user", cfg.MaxAccountsPerUser,
		"cancel_window_days", cfg.CancelWindowDays)

	srv, port, err := server.StartServer(cfg)
	if err != nil {
		return err
	}
	logger.Info("Account service listening", "port", port, "base_url", srv.GetBaseURL())

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Account service stopped")
	return nil
}
