package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink records tag invalidations as version counters in Redis. A cached
// read stores the version it was built against; a bumped counter makes every
// read under that tag stale on its next lookup.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = LifeDays
	}
	return &RedisSink{client: client, ttl: ttl}
}

func (s *RedisSink) Invalidate(ctx context.Context, tag string) error {
	key := versionKey(tag)
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

// Version returns the current version of a tag, zero when the tag has never
// been invalidated or has expired.
func (s *RedisSink) Version(ctx context.Context, tag string) (int64, error) {
	v, err := s.client.Get(ctx, versionKey(tag)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func versionKey(tag string) string {
	return fmt.Sprintf("cache-tag:%s", tag)
}

// ConnectRedis dials the Redis instance named by REDIS_ADDR and fails fast
// when it is unreachable.
func ConnectRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Redis connected")
	return client
}
