// Package dedup remembers which keys have already been acted on, using a
// Redis SET NX with a TTL.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a key is remembered. Status-change notifications
	// are redelivered within seconds, so a day is ample.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "permit:seen:"
)

type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFilter(rdb *redis.Client) *Filter {
	return &Filter{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// IsNew returns true if key has not been seen before and marks it seen.
// Without a Redis client every key is new.
func (f *Filter) IsNew(ctx context.Context, key string) (bool, error) {
	if f == nil || f.rdb == nil {
		return true, nil
	}

	set, err := f.rdb.SetNX(ctx, keyPrefix+key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}
