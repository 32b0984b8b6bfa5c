package cache

import (
	"context"
	"sync"
)

const defaultSubscriberBuffer = 256

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	// Subscribe returns the messages of channels and a cancel function.
	// The message channel closes on cancel or when ctx ends.
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// listener is the delivery side of a backend. deliver must not block, and
// no call may reach it once the returned stop function has returned.
type listener interface {
	Publish(ctx context.Context, channel, payload string) error
	Listen(ctx context.Context, deliver func(channel, payload string), channels ...string) (func(), error)
}

type pubsub struct {
	backend listener
	buf     int
}

func newPubSub(backend listener, buf int) *pubsub {
	return &pubsub{backend: backend, buf: buf}
}

func (p *pubsub) Publish(ctx context.Context, channel, message string) error {
	return p.backend.Publish(ctx, channel, message)
}

// Subscribe buffers up to buf messages per subscriber. A subscriber that
// falls further behind misses messages rather than stalling the publisher.
func (p *pubsub) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	out := make(chan *Message, p.buf)
	stop, err := p.backend.Listen(ctx, func(channel, payload string) {
		select {
		case out <- &Message{Channel: channel, Payload: payload}:
		default:
		}
	}, channels...)
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			close(out)
		})
	}
	context.AfterFunc(ctx, cancel)
	return out, cancel, nil
}
