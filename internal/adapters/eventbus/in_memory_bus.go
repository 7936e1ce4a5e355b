package eventbus

import (
	"GreenPay/internal/core/ports"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

type workerKey struct{}

// InMemoryEventBus implements ports.EventBus. Every handler runs in its own
// goroutine; at most `workers` handlers run at once and Publish blocks
// while the pool is full.
type InMemoryEventBus struct {
	log         zerolog.Logger
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
	sem         *semaphore.Weighted
	inflight    sync.WaitGroup
}

var _ ports.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates a new, empty event bus
func NewInMemoryEventBus(workers int, baseLogger *zerolog.Logger) *InMemoryEventBus {
	if workers < 1 {
		workers = 1
	}
	return &InMemoryEventBus{
		log:         baseLogger.With().Str("component", "in_memory_bus").Logger(),
		subscribers: make(map[string][]ports.EventHandler),
		sem:         semaphore.NewWeighted(int64(workers)),
	}
}

// Publish sends an event to all subscribers of a topic. It returns the
// context error if ctx ends while waiting for a free worker.
func (b *InMemoryEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.RLock()
	handlers := b.subscribers[topic]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug().Str("topic", topic).Msg("Published event with no subscribers")
		return nil
	}

	event := ports.Event{
		ID:    uuid.New(),
		Topic: topic,
		Data:  data,
	}

	// Events published from inside a handler run inline on that worker.
	// Waiting for a second slot there could starve the pool.
	if ctx.Value(workerKey{}) != nil {
		for _, handler := range handlers {
			b.run(ctx, handler, event)
		}
		return nil
	}

	for _, handler := range handlers {
		if err := b.sem.Acquire(ctx, 1); err != nil {
			b.log.Warn().Err(err).Str("topic", topic).Str("event_id", event.ID.String()).Msg("Dropped event, bus is shutting down")
			return err
		}

		b.inflight.Add(1)
		go func(h ports.EventHandler) {
			defer b.inflight.Done()
			defer b.sem.Release(1)
			// Handlers outlive the publisher's context.
			b.run(context.WithValue(context.WithoutCancel(ctx), workerKey{}, true), h, event)
		}(handler)
	}

	b.log.Debug().Str("topic", topic).Str("event_id", event.ID.String()).Int("handlers", len(handlers)).Msg("Event published")
	return nil
}

func (b *InMemoryEventBus) run(ctx context.Context, h ports.EventHandler, event ports.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("topic", event.Topic).Str("event_id", event.ID.String()).Msg("Event handler panicked")
		}
	}()

	if err := h(ctx, event); err != nil {
		b.log.Error().Err(err).Str("topic", event.Topic).Str("event_id", event.ID.String()).Msg("Event handler failed")
	}
}

// Subscribe registers a handler for a specific topic
func (b *InMemoryEventBus) Subscribe(topic string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.log.Info().Str("topic", topic).Msg("New handler subscribed to topic")
}

// Wait blocks until every handler started so far has returned.
func (b *InMemoryEventBus) Wait() {
	b.inflight.Wait()
}
