// Package hook lets table rules observe and adjust tests and matrix
// changes without touching the engine.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInterrupt signals that a handler wants to stop further processing.
var ErrInterrupt = errors.New("hook interrupted")

// HookFn is a hook handler function.
// Returns (modified data, nil) to continue, or (data, ErrInterrupt) to stop.
type HookFn func(ctx context.Context, event string, data interface{}) (interface{}, error)

type handler struct {
	name     string
	priority int
	seq      uint64
	fn       HookFn
}

// HookCenter dispatches events to registered handlers in priority order.
// Handlers of equal priority run in registration order.
type HookCenter struct {
	mu       sync.RWMutex
	handlers map[string][]handler
	seq      uint64
}

// NewHookCenter creates a new HookCenter.
func NewHookCenter() *HookCenter {
	return &HookCenter{handlers: make(map[string][]handler)}
}

// Register adds fn for event. Lower priorities run first. Registering a name
// twice for the same event replaces the earlier handler.
func (hc *HookCenter) Register(event string, priority int, name string, fn HookFn) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.seq++
	list := without(hc.handlers[event], name)
	list = append(list, handler{name: name, priority: priority, seq: hc.seq, fn: fn})
	sort.Slice(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	hc.handlers[event] = list
}

// Unregister removes the handler called name from event.
func (hc *HookCenter) Unregister(event, name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.handlers[event] = without(hc.handlers[event], name)
}

// UnregisterAll removes every handler called name.
func (hc *HookCenter) UnregisterAll(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	for event, list := range hc.handlers {
		hc.handlers[event] = without(list, name)
	}
}

// Handlers returns the handler names of event in the order they run.
func (hc *HookCenter) Handlers(event string) []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.handlers[event]))
	for _, h := range hc.handlers[event] {
		names = append(names, h.name)
	}
	return names
}

func without(list []handler, name string) []handler {
	out := list[:0:0]
	for _, h := range list {
		if h.name != name {
			out = append(out, h)
		}
	}
	return out
}

// Trigger passes data through the handlers of event. An ErrInterrupt stops
// the chain and is returned wrapped with the handler name. Other handler
// errors and panics do not stop the chain; they are returned joined once
// every handler ran.
func (hc *HookCenter) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	hc.mu.RLock()
	list := append([]handler(nil), hc.handlers[event]...)
	hc.mu.RUnlock()

	var failed []error
	for _, h := range list {
		out, err := call(ctx, h, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, fmt.Errorf("hook %s on %s: %w", h.name, event, err)
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("hook %s on %s: %w", h.name, event, err))
			continue
		}
		data = out
	}
	return data, errors.Join(failed...)
}

func call(ctx context.Context, h handler, event string, data interface{}) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = data, fmt.Errorf("panic: %v", r)
		}
	}()
	return h.fn(ctx, event, data)
}
