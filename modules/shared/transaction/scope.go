// Package transaction defines the transactional boundary used by command
// handlers. Implementations live in internal/platform.
package transaction

import (
	"context"
	"sync"
)

// Scope is the unit-of-work boundary. The Spanner scope commits when fn
// returns nil and may run fn more than once on abort, so fn must not keep
// state across attempts.
type Scope interface {
	// Execute runs fn with a ctx that carries the transaction.
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExecuteWithResult runs fn within a transaction and returns the result.
func ExecuteWithResult[T any](ctx context.Context, scope Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

type serialKey struct{}

// SerialScope serializes transactions with a process-wide lock. It backs the
// in-memory stores, where it is what makes read-check-write sequences atomic.
// Nested Execute calls on the same scope run inline.
type SerialScope struct {
	mu sync.Mutex
}

func NewSerialScope() *SerialScope {
	return &SerialScope{}
}

func (s *SerialScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(serialKey{}).(*SerialScope); owner == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, serialKey{}, s))
}

var _ Scope = (*SerialScope)(nil)
