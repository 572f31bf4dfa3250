package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/fedipress/hermes/internal/event"
)

const (
	// AttrEvent is the routing attribute carrying the event name.
	AttrEvent = "event"
	// AttrOrigin is the routing attribute carrying the emitting host.
	AttrOrigin = "origin"
)

// Message is one unit of cross-process delivery.
type Message struct {
	Topic      string
	Payload    []byte
	Attributes map[string]string
}

// Transport is the external at-least-once message channel. Delivery is
// unordered between messages and may repeat; consumers must be idempotent.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte, attributes map[string]string) error
	OnMessage(h func(ctx context.Context, m Message) error)
}

// Remote bridges the local bus and the external transport.
type Remote struct {
	transport Transport
	bus       *Bus
	topic     string
	origin    string
}

// NewRemote wires the transport's inbound messages into the local bus. A
// failing local handler is logged and the message is acknowledged anyway;
// redelivery, if any, happens at the transport level on the whole message.
// Undecodable and unknown-name messages are acknowledged too, so a poison
// message can not wedge the channel.
func NewRemote(t Transport, b *Bus, topic, origin string) *Remote {
	r := &Remote{
		transport: t,
		bus:       b,
		topic:     topic,
		origin:    origin,
	}

	t.OnMessage(func(ctx context.Context, m Message) error {
		name := m.Attributes[AttrEvent]

		e, err := event.Decode(name, m.Payload)
		if err != nil {
			if errors.Is(err, event.ErrUnknownEvent) {
				log.WithField("event", name).Warn("skip message with unknown event")
				return nil
			}
			log.WithError(err).WithField("event", name).Error("failed to decode message")
			return nil
		}

		// own events come back over the shared topic
		if m.Attributes[AttrOrigin] == r.origin {
			return nil
		}

		b.dispatchIsolated(ctx, e)

		return nil
	})

	return r
}

// Publish serializes the event and hands it to the transport with its
// routing attributes. Called after the owning save committed; failures are
// the caller's to log, never to surface into the mutation path.
func (r *Remote) Publish(ctx context.Context, e event.Event) error {
	payload, err := event.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", e.Name(), err)
	}

	if err := r.transport.Publish(ctx, r.topic, payload, map[string]string{
		AttrEvent:  e.Name(),
		AttrOrigin: r.origin,
	}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Name(), err)
	}

	return nil
}
