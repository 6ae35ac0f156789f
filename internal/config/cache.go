package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RedisConfig struct {
	URL string
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{URL: getenv("REDIS_URL", "redis://localhost:6379/0")}
}

// NewRedisClient parses the URL. The connection is checked when the app starts.
func NewRedisClient(lc fx.Lifecycle, config *RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	log := logger.Named("redis")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			log.Info("Connected to Redis", zap.String("addr", opts.Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info("Closing Redis connection")
			return client.Close()
		},
	})
	return client, nil
}
