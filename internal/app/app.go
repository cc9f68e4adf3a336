// Package app wires configuration into the stores and services shared by
// the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"jjc-attendance/internal/attendance"
	"jjc-attendance/internal/cloudinary"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/httpapi"
	"jjc-attendance/internal/httpmiddleware"
	"jjc-attendance/internal/identity"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/queue"
	"jjc-attendance/internal/store"
	"jjc-attendance/internal/summary"
)

// Runtime holds the opened backends and the services built on them.
type Runtime struct {
	Config config.App

	DB    *store.DB
	Redis *store.Redis
	Queue queue.Queue

	Ledger     attendance.Ledger
	Attendance *attendance.Service
	Summary    *summary.Service
	Users      *identity.Service
	UserStore  identity.Store
}

// Open connects every backend named by cfg and builds the services.
// Postgres schemas are migrated on open.
func Open(ctx context.Context, cfg config.App) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	switch cfg.StorageBackend {
	case "memory":
		logger.Warning("using in-memory storage; data is lost on restart")
		rt.Ledger = attendance.NewMemoryLedger()
		rt.UserStore = identity.NewMemoryStore()
	case "postgres":
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := store.Migrate(ctx, db.Client); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		rt.DB = db
		rt.Ledger = attendance.NewRepository(db.Client)
		rt.UserStore = identity.NewRepository(db.Client)
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	rds, err := store.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Redis = rds

	if cfg.QueueBackend == "memory" {
		rt.Queue = queue.NewInMemory(64)
	} else {
		rt.Queue = queue.NewRedisQueue(rds.Client, queue.DefaultKey)
	}

	loc := cfg.Location()
	cache := summary.NewCache(rds.Client, cfg.SummaryCacheTTL)

	var archiver attendance.Archiver
	if cfg.CloudinaryConfigured() {
		archiver = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		logger.Infof("cloudinary configured: %s", cfg.CloudinaryCloudName)
	} else {
		logger.Warning("cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set); check-in is unavailable")
	}

	rt.Attendance = attendance.NewService(rt.Ledger, archiver,
		attendance.WithLocation(loc),
		attendance.WithFolder(cfg.CloudinaryFolder),
		attendance.WithNotifier(cache),
		attendance.WithNotifier(attendance.NewPublisher(rt.Queue)),
	)
	rt.Summary = summary.NewService(rt.Ledger, summary.WithLocation(loc), summary.WithCache(cache))
	rt.Users = identity.NewService(rt.UserStore, nil, cfg.AdminSecret)
	return rt, nil
}

// Checks lists the dependency probes reported by /api/health.
func (rt *Runtime) Checks() []httpapi.HealthCheck {
	checks := []httpapi.HealthCheck{{Name: "redis", Check: rt.Redis.Ping}}
	if rt.DB != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "db", Check: rt.DB.Ping})
	}
	return checks
}

// Limiter picks the request rate limiter named by RATE_LIMIT_BACKEND. It
// returns nil when limiting is off.
func (rt *Runtime) Limiter() (httpmiddleware.Limiter, error) {
	perMin := rt.Config.RateLimitPerMin
	if perMin <= 0 {
		return nil, nil
	}
	switch rt.Config.RateLimitBackend {
	case "", "redis":
		return httpmiddleware.NewRedisWindow(rt.Redis.Client, perMin), nil
	case "memory":
		return httpmiddleware.NewSimpleTokenBucket(perMin, perMin), nil
	case "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", rt.Config.RateLimitBackend)
	}
}

// Close releases the backends opened by Open.
func (rt *Runtime) Close() {
	if err := rt.Redis.Close(); err != nil {
		logger.Warningf("close redis: %v", err)
	}
	if err := rt.DB.Close(); err != nil {
		logger.Warningf("close db: %v", err)
	}
}
