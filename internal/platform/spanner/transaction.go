package spanner

import (
	"context"
	"errors"

	"cloud.google.com/go/spanner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
)

var tracer = otel.Tracer("github.com/kunalsingh7053/VyaparX/internal/platform/spanner")

// ErrNestedTransaction is returned when a scope is entered with a
// transaction already in ctx. Spanner has no nested transactions; running
// the inner one independently would break atomicity of the outer.
var ErrNestedTransaction = errors.New("nested transaction detected: Cloud Spanner does not support nested transactions")

// ReadWriteTransactionScope runs units of work in Spanner read-write
// transactions. Build one at startup and share it between modules.
type ReadWriteTransactionScope struct {
	client *spanner.Client
}

func NewReadWriteTransactionScope(client *spanner.Client) *ReadWriteTransactionScope {
	return &ReadWriteTransactionScope{client: client}
}

// Execute runs fn in a read-write transaction carried by the ctx passed to
// fn; repositories pick it up with ReadWriteTxFromContext. The transaction
// commits when fn returns nil.
//
// Spanner re-runs fn when the transaction aborts, so fn must:
//   - be safe to repeat
//   - not call the payment provider, the broker or any other external system
//
// Events reach the outbox through the same transaction and are retried with it.
func (s *ReadWriteTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "spanner.ReadWriteTransaction")
	defer span.End()

	attempts := 0
	_, err := s.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		attempts++
		txCtx, err := withReadWriteTx(ctx, tx)
		if err != nil {
			return err
		}
		return fn(txCtx)
	})

	span.SetAttributes(attribute.Int("spanner.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
	}
	return err
}

var _ transaction.Scope = (*ReadWriteTransactionScope)(nil)
