package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

const defaultBatchSize = 100

// Relay forwards pending outbox messages to the broker in creation order.
type Relay struct {
	store     Store
	codec     *eventbus.Codec
	publisher events.Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewRelay(store Store, codec *eventbus.Codec, publisher events.Publisher, interval time.Duration, logger *slog.Logger) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		store:     store,
		codec:     codec,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger.With("component", "outbox-relay"),
	}
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Warn("outbox relay pass failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce relays one batch and returns how many messages were sent. It
// stops at the first publish failure so later events do not overtake it.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	msgs, err := r.store.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range msgs {
		event, err := r.codec.Decode(m.Type, m.Payload)
		if err != nil {
			// A row nobody can decode would block the queue forever.
			r.logger.Error("dropping undecodable outbox message",
				slog.String("event_id", m.ID),
				slog.String("event_type", m.Type.String()),
				slog.Any("error", err))
			if err := r.store.MarkSent(ctx, m.ID); err != nil {
				return sent, err
			}
			continue
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			return sent, fmt.Errorf("publishing %s %s: %w", m.Type, m.ID, err)
		}
		if err := r.store.MarkSent(ctx, m.ID); err != nil {
			return sent, err
		}
		sent++

		r.logger.Debug("relayed event",
			slog.String("event_id", m.ID),
			slog.String("event_type", m.Type.String()),
			slog.String("aggregate_id", m.AggregateID))
	}
	return sent, nil
}
