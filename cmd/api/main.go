package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/app"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/httpapi"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		logger.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	// An in-memory queue is only visible to this process, so it is drained here.
	if cfg.QueueBackend == "memory" {
		go func() {
			if err := worker.Run(ctx, rt.Queue, rt.Summary); err != nil {
				logger.Errorf("in-process worker: %v", err)
			}
		}()
	}

	limiter, err := rt.Limiter()
	if err != nil {
		return err
	}

	r := httpapi.NewRouter(httpapi.Deps{
		Config:     cfg,
		Attendance: rt.Attendance,
		Summary:    rt.Summary,
		Users:      rt.Users,
		Limiter:    limiter,
		Checks:     rt.Checks(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting server on :%s (env=%s)", cfg.HTTPPort, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("server forced shutdown: %v", err)
	}
	logger.Info("server exited")
	return nil
}
