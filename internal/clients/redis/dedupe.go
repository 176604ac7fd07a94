package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Deduper claims keys for a bounded time so a side effect runs once.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim whose side effect failed, so a later call retries.
	Release(ctx context.Context, key string) error
}

type setNXDeduper struct {
	rdb    goredis.Cmdable
	prefix string
}

func NewDeduper(rdb goredis.Cmdable, prefix string) Deduper {
	return &setNXDeduper{rdb: rdb, prefix: prefix}
}

// Claim reports true for the first caller within ttl.
func (d *setNXDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if d == nil || d.rdb == nil {
		return false, fmt.Errorf("redis deduper not initialized")
	}
	if key == "" {
		return false, fmt.Errorf("dedupe key required")
	}
	return d.rdb.SetNX(ctx, d.key(key), "1", ttl).Result()
}

func (d *setNXDeduper) Release(ctx context.Context, key string) error {
	if d == nil || d.rdb == nil {
		return fmt.Errorf("redis deduper not initialized")
	}
	return d.rdb.Del(ctx, d.key(key)).Err()
}

func (d *setNXDeduper) key(key string) string {
	if d.prefix == "" {
		return key
	}
	return d.prefix + ":" + key
}
