package spanner

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// CheckVersion compares the Version column of table[key] with expected and
// returns types.ErrConcurrentUpdate on mismatch. A missing row has version 0.
// The read locks the row until tx commits.
func CheckVersion(ctx context.Context, tx *spanner.ReadWriteTransaction, table string, key spanner.Key, expected int64) error {
	var stored int64
	row, err := tx.ReadRow(ctx, table, key, []string{"Version"})
	switch {
	case spanner.ErrCode(err) == codes.NotFound:
	case err != nil:
		return fmt.Errorf("read %s version: %w", table, err)
	default:
		if err := row.Columns(&stored); err != nil {
			return fmt.Errorf("scan %s version: %w", table, err)
		}
	}
	if stored != expected {
		return types.ErrConcurrentUpdate
	}
	return nil
}
