// Package bus contains the in-process event dispatcher and the adapter for
// the cross-process message transport.
package bus

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedipress/hermes/internal/event"
)

var log = logrus.WithField("package", "bus")

// Handler processes one event. A handler returning an error fails the
// emitting call; it does not prevent the remaining handlers from running.
type Handler func(ctx context.Context, e event.Event) error

// Bus is a synchronous named-event dispatcher. Registration happens once at
// startup; dispatch never mutates the handler set, so emitting from multiple
// goroutines is safe without locking.
type Bus struct {
	handlers map[string][]Handler
}

// New ...
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for the named event. Unknown names are
// rejected here rather than at dispatch time.
func (b *Bus) Subscribe(name string, h Handler) error {
	if !event.IsKnownName(name) {
		return fmt.Errorf("%w: %s", event.ErrUnknownEvent, name)
	}

	b.handlers[name] = append(b.handlers[name], h)

	return nil
}

// Emit invokes every handler registered for the event's name, in
// registration order, and does not return until all of them completed.
// Handler errors are collected; the first one is returned wrapping the rest
// into the error chain via errors.Join semantics of the emit result.
func (b *Bus) Emit(ctx context.Context, e event.Event) error {
	var errs []error

	for _, h := range b.handlers[e.Name()] {
		if err := h(ctx, e); err != nil {
			log.WithError(err).WithField("event", e.Name()).Error("handler failed")
			errs = append(errs, err)
		}
	}

	if len(errs) != 0 {
		return fmt.Errorf("failed to emit %s: %w", e.Name(), joinErrors(errs))
	}

	return nil
}

// dispatchIsolated runs the registered handlers recording each outcome
// independently. Used on the receiving side of the remote channel, where a
// failing handler is logged but the message is still considered handled.
func (b *Bus) dispatchIsolated(ctx context.Context, e event.Event) {
	for _, h := range b.handlers[e.Name()] {
		if err := h(ctx, e); err != nil {
			log.WithError(err).WithField("event", e.Name()).Error("remote handler failed")
		}
	}
}

func joinErrors(errs []error) error {
	err := errs[0]
	for _, e := range errs[1:] {
		err = fmt.Errorf("%w; %s", err, e)
	}
	return err
}
