// Package redis wraps the optional redis connection used for auth rate
// limiting. The service runs fine without it.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/NekruzRakhimov/todo-list/internal/pkg/config"
)

// Connect opens a redis client and verifies the connection
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	zap.L().Info("redis connected",
		zap.String("addr", cfg.GetRedisAddr()))

	return client, nil
}
