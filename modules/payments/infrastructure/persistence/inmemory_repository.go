// Package persistence implements repository interfaces for payments.
package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// InMemoryRepository implements PaymentRepository using in-memory storage.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]paymentRecord

	// byProviderOrder points at the latest payment for each intent.
	byProviderOrder map[string]string
}

type paymentRecord struct {
	id                types.PaymentID
	orderID           types.OrderID
	userID            types.UserID
	providerOrderID   string
	providerPaymentID string
	signature         string
	status            domain.Status
	price             types.Money
	createdAt         time.Time
	updatedAt         time.Time
	version           int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		payments:        make(map[string]paymentRecord),
		byProviderOrder: make(map[string]string),
	}
}

func (r *InMemoryRepository) Save(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.ID().String()
	stored, exists := r.payments[key]
	if exists && stored.version != p.Version() {
		return types.ErrConcurrentUpdate
	}
	if !exists && p.Version() != 0 {
		return types.ErrConcurrentUpdate
	}

	r.payments[key] = paymentRecord{
		id:                p.ID(),
		orderID:           p.OrderID(),
		userID:            p.UserID(),
		providerOrderID:   p.ProviderOrderID(),
		providerPaymentID: p.ProviderPaymentID(),
		signature:         p.Signature(),
		status:            p.Status(),
		price:             p.Price(),
		createdAt:         p.CreatedAt(),
		updatedAt:         p.UpdatedAt(),
		version:           p.Version() + 1,
	}
	if !exists {
		r.byProviderOrder[p.ProviderOrderID()] = key
	}
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.PaymentID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.payments[id.String()]
	if !exists {
		return nil, domain.ErrPaymentNotFound
	}
	return rec.restore(), nil
}

func (r *InMemoryRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, exists := r.byProviderOrder[providerOrderID]
	if !exists {
		return nil, domain.ErrPaymentNotFound
	}
	return r.payments[key].restore(), nil
}

func (rec paymentRecord) restore() *domain.Payment {
	return domain.Reconstitute(
		rec.id,
		rec.orderID,
		rec.userID,
		rec.providerOrderID,
		rec.providerPaymentID,
		rec.signature,
		rec.status,
		rec.price,
		rec.createdAt,
		rec.updatedAt,
		rec.version,
	)
}
