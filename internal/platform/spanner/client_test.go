package spanner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/spanner"
)

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements()

	want := []string{
		"CREATE TABLE Orders",
		"CREATE INDEX OrdersByUserID",
		"CREATE TABLE OrderItems",
		"CREATE TABLE Payments",
		"CREATE INDEX PaymentsByProviderOrderID",
		"CREATE TABLE Outbox",
		"CREATE INDEX OutboxBySentAt",
	}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(want))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(stmts[i], prefix) {
			t.Errorf("statement %d = %q, want prefix %q", i, stmts[i], prefix)
		}
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{ProjectID: "p", InstanceID: "i", DatabaseID: "d"}
	if got := cfg.DSN(); got != "projects/p/instances/i/databases/d" {
		t.Errorf("DSN() = %q", got)
	}
}

func TestWithReadWriteTx_RejectsNesting(t *testing.T) {
	var tx *spanner.ReadWriteTransaction

	ctx, err := withReadWriteTx(context.Background(), tx)
	if err != nil {
		t.Fatalf("withReadWriteTx() error = %v", err)
	}
	reader, release := Reader(ctx, nil)
	defer release()
	if _, ok := reader.(*spanner.ReadWriteTransaction); !ok {
		t.Errorf("Reader() = %T, want the ambient read-write transaction", reader)
	}
	if _, err := withReadWriteTx(ctx, tx); !errors.Is(err, ErrNestedTransaction) {
		t.Errorf("nested withReadWriteTx() error = %v, want ErrNestedTransaction", err)
	}
}
