package cache

import (
	"context"
	"fmt"
	"time"

	"YieldProjector/pkg/config"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cache.backend.
func New(cfg *config.Config) (BytesCache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return newRedis(cfg), nil
	case "layered":
		return NewLayeredCache(newRedis(cfg), cfg.Cache.LocalTTL), nil
	case "memory", "":
		return NewTTLCache(), nil
	case "none":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

func newRedis(cfg *config.Config) *RedisCache {
	return NewRedisCache(RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetBytes(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) SetBytes(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error                          { return nil }
