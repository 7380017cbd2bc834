package spanner

import (
	"context"

	"cloud.google.com/go/spanner"
)

// ReadTransaction is the read surface shared by read-write and read-only
// transactions. Repositories read through the ambient read-write
// transaction when there is one and open a read-only one otherwise.
type ReadTransaction interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
	Read(ctx context.Context, table string, keys spanner.KeySet, columns []string) *spanner.RowIterator
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

type readWriteTxKey struct{}

func withReadWriteTx(ctx context.Context, tx *spanner.ReadWriteTransaction) (context.Context, error) {
	if ctx.Value(readWriteTxKey{}) != nil {
		return nil, ErrNestedTransaction
	}
	return context.WithValue(ctx, readWriteTxKey{}, tx), nil
}

// ReadWriteTxFromContext extracts a Spanner ReadWriteTransaction from context.
// Returns (nil, false) if no transaction is present.
func ReadWriteTxFromContext(ctx context.Context) (*spanner.ReadWriteTransaction, bool) {
	tx, ok := ctx.Value(readWriteTxKey{}).(*spanner.ReadWriteTransaction)
	return tx, ok
}

// Reader returns the ambient read-write transaction, or a new read-only
// transaction on client so multi-statement reads see one snapshot.
// release must be called once reading is done.
func Reader(ctx context.Context, client *spanner.Client) (reader ReadTransaction, release func()) {
	if tx, ok := ReadWriteTxFromContext(ctx); ok {
		return tx, func() {}
	}
	ro := client.ReadOnlyTransaction()
	return ro, ro.Close
}
