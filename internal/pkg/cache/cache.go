package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
)

// SetupCache opens a client for the Redis/Dragonfly server. An unreachable
// server is logged, not fatal: go-redis reconnects lazily.
func SetupCache(cfg config.CacheConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to cache at %s: %v", cfg.Addr(), err)
	} else {
		log.Printf("Successfully connected to cache: %s", pong)
	}
	return client
}

// Pinger returns a health probe for client. A nil client always passes.
func Pinger(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return nil
		}
		return client.Ping(ctx).Err()
	}
}
