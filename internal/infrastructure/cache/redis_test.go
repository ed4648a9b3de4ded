package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unreachableCache points at a port nothing listens on
func unreachableCache() *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisCacheFromClient(client, time.Minute, zap.NewNop())
}

func TestRedisCache_SetRejectsUnmarshalableValue(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	err := c.Set(context.Background(), "k", make(chan int))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRedisCache_UnreachableIsNotAMiss(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	ctx := context.Background()

	var dest map[string]string
	err := c.Get(ctx, "k", &dest)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrCacheMiss) {
		t.Error("connection failure must not be reported as a cache miss")
	}

	if err := c.HealthCheck(ctx); err == nil {
		t.Error("expected health check to fail")
	}
}
