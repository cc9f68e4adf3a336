package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"jjc-attendance/internal/logger"
)

// Redis wraps a redis client, optionally backed by an embedded server.
type Redis struct {
	Client *redis.Client
	mini   *miniredis.Miniredis
}

// NewRedis connects to addr, or starts an embedded Redis when addr is empty.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		logger.Infof("embedded redis started on %s", mr.Addr())
		return &Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}), mini: mr}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  6 * time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	logger.Infof("connected to redis at %s", addr)
	return &Redis{Client: client}, nil
}

// Embedded reports whether the client talks to the in-process server.
func (r *Redis) Embedded() bool {
	return r != nil && r.mini != nil
}

// Ping reports redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis: not connected")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client and stops the embedded server, if any.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.Client != nil {
		err = r.Client.Close()
	}
	if r.mini != nil {
		r.mini.Close()
	}
	return err
}
