// Package persistence implements repository interfaces for orders.
package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// InMemoryRepository implements OrderRepository using in-memory storage.
// It keeps snapshots, so changes to a loaded order are invisible until Save.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]orderRecord
}

type orderRecord struct {
	id        types.OrderID
	userID    types.UserID
	items     []domain.LineItem
	address   types.Address
	status    domain.Status
	total     types.Money
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]orderRecord),
	}
}

func (r *InMemoryRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := order.ID().String()
	stored, exists := r.orders[key]
	if exists && stored.version != order.Version() {
		return types.ErrConcurrentUpdate
	}
	if !exists && order.Version() != 0 {
		return types.ErrConcurrentUpdate
	}

	r.orders[key] = snapshot(order, order.Version()+1)
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.orders[id.String()]
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	return rec.restore(), nil
}

func (r *InMemoryRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var userOrders []orderRecord
	for _, rec := range r.orders {
		if rec.userID == userID {
			userOrders = append(userOrders, rec)
		}
	}
	sort.Slice(userOrders, func(i, j int) bool {
		return userOrders[i].createdAt.After(userOrders[j].createdAt)
	})

	total := len(userOrders)

	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("invalid page window offset=%d limit=%d", offset, limit)
	}
	if offset >= total {
		return []*domain.Order{}, total, nil
	}

	end := total
	if limit < total-offset {
		end = offset + limit
	}

	page := make([]*domain.Order, 0, end-offset)
	for _, rec := range userOrders[offset:end] {
		page = append(page, rec.restore())
	}
	return page, total, nil
}

func snapshot(o *domain.Order, version int64) orderRecord {
	return orderRecord{
		id:        o.ID(),
		userID:    o.UserID(),
		items:     append([]domain.LineItem(nil), o.Items()...),
		address:   o.ShippingAddress(),
		status:    o.Status(),
		total:     o.Total(),
		createdAt: o.CreatedAt(),
		updatedAt: o.UpdatedAt(),
		version:   version,
	}
}

func (rec orderRecord) restore() *domain.Order {
	return domain.Reconstitute(
		rec.id,
		rec.userID,
		append([]domain.LineItem(nil), rec.items...),
		rec.address,
		rec.status,
		rec.total,
		rec.createdAt,
		rec.updatedAt,
		rec.version,
	)
}
