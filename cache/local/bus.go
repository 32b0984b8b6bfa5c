package local

import (
	"context"
	"errors"
	"sync"
)

// Bus is an in-process fan-out of published payloads to listeners.
type Bus struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[string]map[uint64]func(channel, payload string)
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string]map[uint64]func(channel, payload string))}
}

// Publish calls every listener of channel on the caller's goroutine.
func (b *Bus) Publish(_ context.Context, channel, payload string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, deliver := range b.listeners[channel] {
		deliver(channel, payload)
	}
	return nil
}

// Listen registers deliver on channels until the returned stop is called.
// deliver runs under the bus read lock and must not block or publish.
func (b *Bus) Listen(_ context.Context, deliver func(channel, payload string), channels ...string) (func(), error) {
	if len(channels) == 0 {
		return nil, errors.New("local: listen without channels")
	}
	b.mu.Lock()
	id := b.next
	b.next++
	for _, c := range channels {
		if b.listeners[c] == nil {
			b.listeners[c] = make(map[uint64]func(channel, payload string))
		}
		b.listeners[c][id] = deliver
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, c := range channels {
				delete(b.listeners[c], id)
				if len(b.listeners[c]) == 0 {
					delete(b.listeners, c)
				}
			}
		})
	}, nil
}

// Listeners returns the number of listeners on channel.
func (b *Bus) Listeners(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[channel])
}
