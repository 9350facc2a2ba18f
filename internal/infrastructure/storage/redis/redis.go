// Package redis provides Redis-backed per-user state for the dashboard.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxHealthCheckRetries is the number of pings attempted before giving up.
const maxHealthCheckRetries = 3

// Config is the Redis connection configuration.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := healthCheck(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func healthCheck(ctx context.Context, client redis.Cmdable) error {
	var err error
	backoff := 100 * time.Millisecond
	for i := 1; i <= maxHealthCheckRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return nil
		}
		if i < maxHealthCheckRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return err
}
