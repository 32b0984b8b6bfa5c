// Package redis is the shared backend used when several server instances
// serve the same scenes.
package redis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds Redis connection settings. Prefix namespaces every key and
// channel so deployments can share a database.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Backend implements the cache and the pub/sub listener on one client.
type Backend struct {
	client *goredis.Client
	prefix string
}

// Dial connects and pings the server.
func Dial(cfg Config) (*Backend, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Backend{client: client, prefix: cfg.Prefix}, nil
}

// Close closes the client, ending every subscription.
func (b *Backend) Close() {
	_ = b.client.Close()
}

func (b *Backend) key(k string) string { return b.prefix + k }

func (b *Backend) keys(ks []string) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = b.key(k)
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, goredis.Nil) {
		return ErrNotFound
	}
	return err
}

func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.client.Get(ctx, b.key(key)).Result()
	return v, notFound(err)
}

func (b *Backend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return b.client.Set(ctx, b.key(key), value, max(ttl, 0)).Err()
}

func (b *Backend) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return b.client.SetNX(ctx, b.key(key), value, max(ttl, 0)).Result()
}

func (b *Backend) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, b.keys(keys)...).Err()
}

// Keys walks the key space with SCAN and strips the namespace prefix.
func (b *Backend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, escapeGlob(b.key(prefix))+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *Backend) HSet(ctx context.Context, key, field, value string) error {
	return b.client.HSet(ctx, b.key(key), field, value).Err()
}

func (b *Backend) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return b.client.HGetAll(ctx, b.key(key)).Result()
}

func (b *Backend) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return b.client.HDel(ctx, b.key(key), fields...).Err()
}

// PushCapped runs LPUSH and LTRIM in one MULTI so readers never see the
// list past its cap.
func (b *Backend) PushCapped(ctx context.Context, key, value string, limit int64) error {
	k := b.key(key)
	_, err := b.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, k, value)
		if limit > 0 {
			p.LTrim(ctx, k, 0, limit-1)
		}
		return nil
	})
	return err
}

func (b *Backend) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return b.client.LRange(ctx, b.key(key), start, stop).Result()
}

func (b *Backend) Publish(ctx context.Context, channel, payload string) error {
	return b.client.Publish(ctx, b.key(channel), payload).Err()
}

// Listen subscribes to channels and waits for the server to confirm before
// returning, so nothing published afterwards is missed. stop closes the
// subscription and returns once deliver can no longer be called.
func (b *Backend) Listen(ctx context.Context, deliver func(channel, payload string), channels ...string) (func(), error) {
	ps := b.client.Subscribe(ctx, b.keys(channels)...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			deliver(strings.TrimPrefix(msg.Channel, b.prefix), msg.Payload)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = ps.Close()
			<-done
		})
	}, nil
}

// escapeGlob quotes the pattern characters of a SCAN MATCH argument.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
