package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	config "github.com/summarybot/summarybot/configs"
)

// NewRedisClient creates a new Redis client. A failed ping is reported to the
// caller but the client is still returned: the fallback chain tolerates an
// unreachable networked tier and will start using it once Redis comes back.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return client, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
