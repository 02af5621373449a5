package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// EventStore is the slice of eventstore.Store the bus needs. Declared here
// so the pipeline does not import the storage side.
type EventStore interface {
	Append(ctx context.Context, generationID, eventType string, payload []byte, metadata map[string]string) error
}

// Handler processes a pipeline event. A non-nil error aborts delivery to
// later handlers and is returned from Publish.
type Handler func(Event) error

// Bus delivers pipeline events to subscribers synchronously, in
// subscription order, optionally persisting each event first.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	store    EventStore
}

func NewBus() *Bus { return &Bus{handlers: map[string][]Handler{}} }

// NewBusWithEventStore creates a bus that persists every published event
// to store before delivering it.
func NewBusWithEventStore(store EventStore) *Bus {
	b := NewBus()
	b.store = store
	return b
}

// Subscribe registers a handler for one event name. Nil handlers are ignored.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// SubscribeAll registers a handler for every pipeline event name.
func (b *Bus) SubscribeAll(h Handler) {
	for _, name := range allEventNames {
		b.Subscribe(name, h)
	}
}

// Publish persists e (when a store is configured) and then invokes each
// subscribed handler in order, stopping at the first handler error.
// Persistence failures are logged, not propagated: a degraded event store
// never fails a generation.
func (b *Bus) Publish(e Event) error {
	b.persist(e)

	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[e.Name()]...)
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(e); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) persist(e Event) {
	if b.store == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		payload = []byte{}
	}
	if err := b.store.Append(context.Background(), e.GenerationID(), e.Name(), payload, nil); err != nil {
		slog.Warn("event persistence failed",
			slog.String("event", e.Name()),
			slog.String("generation_id", e.GenerationID()),
			slog.Any("error", err))
	}
}
