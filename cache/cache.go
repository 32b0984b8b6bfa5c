package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/sr5rules/cache/local"
	cacheredis "github.com/kasuganosora/sr5rules/cache/redis"
	"github.com/kasuganosora/sr5rules/config"
)

// Cache is the key space holding pending tests, their scene index and the
// recent results feed of every scene.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// Keys lists the live keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	HSet(ctx context.Context, key, field, value string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error

	// PushCapped prepends value to the list at key and drops everything past
	// the first limit entries. A non-positive limit keeps the whole list.
	PushCapped(ctx context.Context, key, value string, limit int64) error
	// LRange returns the entries between start and stop inclusive, head
	// first. Negative indexes count from the tail.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	Close()
}

// IsNotFound reports whether err is a missing key of either backend.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// Open connects the backend selected by cfg: Redis when RedisAddr is set,
// an in-process key space otherwise. The pub/sub shares the connection of
// the cache, so closing the cache ends it too.
func Open(cfg config.CacheConfig) (Cache, PubSub, error) {
	buf := cfg.LocalPubSubBuf
	if buf <= 0 {
		buf = defaultSubscriberBuffer
	}
	if cfg.RedisAddr != "" {
		b, err := cacheredis.Dial(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, newPubSub(b, buf), nil
	}
	ks := local.New(local.Config{GCInterval: cfg.LocalGCInterval})
	return ks, newPubSub(local.NewBus(), buf), nil
}
