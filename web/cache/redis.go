// Package cache keeps web sessions in Redis when several folio instances
// sit behind one load balancer.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dboika/folio/logger"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Dial connects to the Redis server at addr and verifies it answers.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("session store connected to Redis at", addr)
	return client, nil
}
