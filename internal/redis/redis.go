package redis

import "github.com/redis/go-redis/v9"

// NewClient creates a Redis client for live-state caching, sessions, and the
// task queue broker.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
