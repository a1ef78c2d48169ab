// Package cache opens the optional Redis connection.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// New returns nil when REDIS_ADDR is not configured.
func New(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	cli := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

func Close(cli *redis.Client) {
	if cli != nil {
		_ = cli.Close()
	}
}
