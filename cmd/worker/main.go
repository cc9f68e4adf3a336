package main

import (
	"context"
	"os/signal"
	"syscall"

	"jjc-attendance/internal/app"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/worker"
)

// Worker consumes attendance events and refreshes per-user summary caches.
func main() {
	cfg := config.Load()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend == "memory" || cfg.RedisAddr == "" {
		logger.Fatalf("worker needs a shared queue: set REDIS_ADDR and QUEUE_BACKEND=redis")
	}

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	defer rt.Close()

	if err := worker.Run(ctx, rt.Queue, rt.Summary); err != nil {
		logger.Errorf("queue consume failed: %v", err)
	}
}
