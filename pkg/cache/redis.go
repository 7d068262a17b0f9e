package cache

import (
	"context"
	"fmt"
	"time"

	"user-admin/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// InitRedis opens a client and validates connectivity with a ping.
func InitRedis(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}
