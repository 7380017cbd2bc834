// Package dedup makes broker consumers idempotent by remembering which
// event ids each consumer has already processed.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

// DefaultTTL bounds how long a processed id is remembered. It must outlive
// the broker's redelivery window.
const DefaultTTL = 7 * 24 * time.Hour

// Store records processed (consumer, event id) pairs.
type Store interface {
	Seen(ctx context.Context, consumer, eventID string) (bool, error)
	Mark(ctx context.Context, consumer, eventID string) error
}

func key(consumer, eventID string) string {
	return fmt.Sprintf("dedup:%s:%s", consumer, eventID)
}

// RedisStore keeps processed ids as expiring Redis keys.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Seen(ctx context.Context, consumer, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(consumer, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking processed event: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Mark(ctx context.Context, consumer, eventID string) error {
	if err := s.client.SetNX(ctx, key(consumer, eventID), 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("marking processed event: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Seen(_ context.Context, consumer, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key(consumer, eventID)]
	return ok, nil
}

func (s *MemoryStore) Mark(_ context.Context, consumer, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key(consumer, eventID)] = struct{}{}
	return nil
}

// Subscriber wraps every handler subscribed through it so that an event id
// already processed by consumer is skipped. Handlers still have to tolerate
// the rare concurrent duplicate that slips between Seen and Mark.
type Subscriber struct {
	next     events.Subscriber
	store    Store
	consumer string
	logger   *slog.Logger
}

func NewSubscriber(next events.Subscriber, store Store, consumer string, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{next: next, store: store, consumer: consumer, logger: logger}
}

func (s *Subscriber) Subscribe(eventType events.EventType, handler events.Handler) error {
	return s.next.Subscribe(eventType, &idempotentHandler{
		next:     handler,
		store:    s.store,
		consumer: s.consumer + "." + eventType.String(),
		logger:   s.logger,
	})
}

type idempotentHandler struct {
	next     events.Handler
	store    Store
	consumer string
	logger   *slog.Logger
}

func (h *idempotentHandler) Handle(ctx context.Context, event events.Event) error {
	seen, err := h.store.Seen(ctx, h.consumer, event.EventID())
	if err != nil {
		return err
	}
	if seen {
		h.logger.Debug("skipping duplicate event",
			slog.String("consumer", h.consumer),
			slog.String("event_id", event.EventID()))
		return nil
	}

	if err := h.next.Handle(ctx, event); err != nil {
		return err
	}
	return h.store.Mark(ctx, h.consumer, event.EventID())
}

var (
	_ Store             = (*RedisStore)(nil)
	_ Store             = (*MemoryStore)(nil)
	_ events.Subscriber = (*Subscriber)(nil)
)
