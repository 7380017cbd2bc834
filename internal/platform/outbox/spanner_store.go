package outbox

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	platformspanner "github.com/kunalsingh7053/VyaparX/internal/platform/spanner"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

var outboxColumns = []string{"EventID", "EventType", "AggregateID", "OccurredAt", "Payload", "CreatedAt", "SentAt"}

// SpannerStore keeps the outbox in the Outbox table of the service database.
type SpannerStore struct {
	client *spanner.Client
}

func NewSpannerStore(client *spanner.Client) *SpannerStore {
	return &SpannerStore{client: client}
}

// Append buffers inserts into the caller's read-write transaction. Outside a
// transaction the rows are applied on their own.
func (s *SpannerStore) Append(ctx context.Context, msgs ...Message) error {
	mutations := make([]*spanner.Mutation, 0, len(msgs))
	for _, m := range msgs {
		mutations = append(mutations, spanner.Insert("Outbox", outboxColumns, []interface{}{
			m.ID,
			m.Type.String(),
			m.AggregateID,
			m.OccurredAt,
			m.Payload,
			m.CreatedAt,
			spanner.NullTime{},
		}))
	}

	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite(mutations)
	}
	if _, err := s.client.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("failed to append outbox messages: %w", err)
	}
	return nil
}

func (s *SpannerStore) Pending(ctx context.Context, limit int) ([]Message, error) {
	stmt := spanner.Statement{
		SQL: `SELECT EventID, EventType, AggregateID, OccurredAt, Payload, CreatedAt
		      FROM Outbox@{FORCE_INDEX=OutboxBySentAt}
		      WHERE SentAt IS NULL
		      ORDER BY CreatedAt
		      LIMIT @limit`,
		Params: map[string]interface{}{"limit": int64(limit)},
	}

	iter := s.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var msgs []Message
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query outbox: %w", err)
		}

		var m Message
		var eventType string
		if err := row.Columns(&m.ID, &eventType, &m.AggregateID, &m.OccurredAt, &m.Payload, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		m.Type = events.EventType(eventType)
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *SpannerStore) MarkSent(ctx context.Context, ids ...string) error {
	now := time.Now().UTC()
	mutations := make([]*spanner.Mutation, 0, len(ids))
	for _, id := range ids {
		mutations = append(mutations, spanner.Update("Outbox", []string{"EventID", "SentAt"}, []interface{}{id, now}))
	}
	if _, err := s.client.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("failed to mark outbox messages sent: %w", err)
	}
	return nil
}

var _ Store = (*SpannerStore)(nil)
