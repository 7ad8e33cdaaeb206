package config

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for cfg.RedisAddr, or nil when redis is not
// configured or unreachable. Callers treat a nil client as "caching and rate
// limiting disabled".
func ConnectRedis(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unreachable at %s, caching disabled: %v", cfg.RedisAddr, err)
		return nil
	}
	return client
}
