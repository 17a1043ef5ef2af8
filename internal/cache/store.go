// Package cache memoizes rendered analytics reports.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a byte cache with per-entry expiry. A ttl of zero or less keeps
// the entry until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Options selects and configures a Store.
type Options struct {
	Driver   string
	Addr     string
	Password string
	DB       int
}

// New builds the Store named by opts.Driver. An empty driver means memory.
func New(opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		if opts.Addr == "" {
			return nil, fmt.Errorf("redis cache needs an address")
		}
		return NewRedisStore(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", opts.Driver)
	}
}
