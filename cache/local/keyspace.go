// Package local is the in-process backend used when no Redis is configured.
package local

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("cache: key not found")
	// ErrWrongType is returned when a key holds another kind of value than
	// the operation expects.
	ErrWrongType = errors.New("cache: key holds the wrong kind of value")
)

// Config holds Keyspace settings.
type Config struct {
	GCInterval time.Duration
	// Now replaces the wall clock, for tests.
	Now func() time.Time
}

type kind uint8

const (
	kindString kind = iota
	kindHash
	kindList
)

// item is one key of the space. Lists are stored tail first so a push is an
// append.
type item struct {
	kind     kind
	str      string
	hash     map[string]string
	list     []string
	expireAt time.Time
}

func (it *item) expired(now time.Time) bool {
	return !it.expireAt.IsZero() && !now.Before(it.expireAt)
}

// Keyspace is a single mutex-guarded map of strings, hashes and lists with
// per-key expiry, mirroring the subset of Redis semantics the server uses.
type Keyspace struct {
	mu        sync.Mutex
	items     map[string]*item
	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a Keyspace and starts the goroutine evicting expired keys.
func New(cfg Config) *Keyspace {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	k := &Keyspace{
		items: make(map[string]*item),
		now:   now,
		stop:  make(chan struct{}),
	}
	go k.evictLoop(interval)
	return k
}

// Close stops the eviction goroutine. Closing twice is a no-op.
func (k *Keyspace) Close() {
	k.closeOnce.Do(func() { close(k.stop) })
}

func (k *Keyspace) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			k.evict()
		case <-k.stop:
			return
		}
	}
}

func (k *Keyspace) evict() {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	for key, it := range k.items {
		if it.expired(now) {
			delete(k.items, key)
		}
	}
}

// lookup returns the live item at key. Callers hold mu.
func (k *Keyspace) lookup(key string) *item {
	it, ok := k.items[key]
	if !ok {
		return nil
	}
	if it.expired(k.now()) {
		delete(k.items, key)
		return nil
	}
	return it
}

// typed is lookup that rejects items of another kind.
func (k *Keyspace) typed(key string, want kind) (*item, error) {
	it := k.lookup(key)
	if it != nil && it.kind != want {
		return nil, ErrWrongType
	}
	return it, nil
}

func (k *Keyspace) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return k.now().Add(ttl)
}

// ---- Strings ----

func (k *Keyspace) Get(_ context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindString)
	if err != nil {
		return "", err
	}
	if it == nil {
		return "", ErrNotFound
	}
	return it.str, nil
}

// Set stores value at key, replacing whatever the key held. A non-positive
// ttl never expires.
func (k *Keyspace) Set(_ context.Context, key, value string, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[key] = &item{kind: kindString, str: value, expireAt: k.deadline(ttl)}
	return nil
}

func (k *Keyspace) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.lookup(key) != nil {
		return false, nil
	}
	k.items[key] = &item{kind: kindString, str: value, expireAt: k.deadline(ttl)}
	return true, nil
}

// ---- Keys ----

func (k *Keyspace) Del(_ context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		delete(k.items, key)
	}
	return nil
}

func (k *Keyspace) Keys(_ context.Context, prefix string) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	var keys []string
	for key, it := range k.items {
		if strings.HasPrefix(key, prefix) && !it.expired(now) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ---- Hashes ----

func (k *Keyspace) HSet(_ context.Context, key, field, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindHash)
	if err != nil {
		return err
	}
	if it == nil {
		it = &item{kind: kindHash, hash: make(map[string]string)}
		k.items[key] = it
	}
	it.hash[field] = value
	return nil
}

func (k *Keyspace) HGetAll(_ context.Context, key string) (map[string]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindHash)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if it != nil {
		for f, v := range it.hash {
			out[f] = v
		}
	}
	return out, nil
}

// HDel removes fields from the hash. Removing the last field removes the key.
func (k *Keyspace) HDel(_ context.Context, key string, fields ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindHash)
	if err != nil || it == nil {
		return err
	}
	for _, f := range fields {
		delete(it.hash, f)
	}
	if len(it.hash) == 0 {
		delete(k.items, key)
	}
	return nil
}

// ---- Lists ----

func (k *Keyspace) PushCapped(_ context.Context, key, value string, limit int64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindList)
	if err != nil {
		return err
	}
	if it == nil {
		it = &item{kind: kindList}
		k.items[key] = it
	}
	it.list = append(it.list, value)
	if n := int64(len(it.list)); limit > 0 && n > limit {
		copy(it.list, it.list[n-limit:])
		it.list = it.list[:limit]
	}
	return nil
}

func (k *Keyspace) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, err := k.typed(key, kindList)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return []string{}, nil
	}
	n := int64(len(it.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(start, 0)
	stop = min(stop, n-1)
	if start > stop {
		return []string{}, nil
	}
	out := make([]string, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		out = append(out, it.list[n-1-i])
	}
	return out, nil
}
