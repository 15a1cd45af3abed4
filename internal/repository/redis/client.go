// Package redis implements the credential store on Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docflow/internal/config"
)

// Connect opens a client and retries the initial ping up to three times.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolTimeout:  4 * time.Second,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			lastErr = fmt.Errorf("failed to ping redis: %w", err)
			_ = client.Close()
			if i < maxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Second):
				}
			}
			continue
		}
		return client, nil
	}

	return nil, fmt.Errorf("failed to connect to redis after %d retries: %w", maxRetries, lastErr)
}
