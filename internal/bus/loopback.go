package bus

import (
	"context"
	"sync"
)

// Loopback is an in-memory Transport. It stands in for the external broker
// in tests and single-process deployments; messages are delivered to every
// registered consumer on the publishing goroutine.
type Loopback struct {
	mu       sync.Mutex
	handlers []func(ctx context.Context, m Message) error
}

// NewLoopback ...
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Publish ...
func (l *Loopback) Publish(ctx context.Context, topic string, payload []byte, attributes map[string]string) error {
	l.mu.Lock()
	handlers := make([]func(ctx context.Context, m Message) error, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	m := Message{
		Topic:      topic,
		Payload:    payload,
		Attributes: attributes,
	}

	for _, h := range handlers {
		if err := h(ctx, m); err != nil {
			log.WithError(err).WithField("topic", topic).Error("loopback consumer failed")
		}
	}

	return nil
}

// OnMessage ...
func (l *Loopback) OnMessage(h func(ctx context.Context, m Message) error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handlers = append(l.handlers, h)
}
