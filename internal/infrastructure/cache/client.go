package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/storenextdoor/stock-service/pkg/config"
)

// NewClient construye el cliente Redis compartido del proceso.
// Acepta una URL redis:// completa o un host:port pelado.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
