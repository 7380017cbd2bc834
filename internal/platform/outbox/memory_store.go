package outbox

import (
	"context"
	"sync"
)

// MemoryStore keeps the outbox in process memory. Paired with a
// transaction.SerialScope it backs the memory store mode.
type MemoryStore struct {
	mu   sync.Mutex
	msgs []Message
	sent map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sent: make(map[string]bool)}
}

func (s *MemoryStore) Append(_ context.Context, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *MemoryStore) Pending(_ context.Context, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Message
	for _, m := range s.msgs {
		if s.sent[m.ID] {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkSent(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.sent[id] = true
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
