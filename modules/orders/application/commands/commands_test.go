package commands_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/orders/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// --- Mocks ---

type mockOrderRepository struct {
	saveFn     func(ctx context.Context, order *domain.Order) error
	findByIDFn func(ctx context.Context, id types.OrderID) (*domain.Order, error)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return m.saveFn(ctx, order)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockOrderRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	return nil, 0, nil
}

type mockTransactionScope struct {
	executeFn func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.executeFn(ctx, fn)
}

func passThroughScope() *mockTransactionScope {
	return &mockTransactionScope{
		executeFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

// recordingRegistry hands every event type to one handler that records it.
type recordingRegistry struct {
	published []events.Event
}

func (r *recordingRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	return []events.Handler{eventbus.HandlerFunc(func(ctx context.Context, e events.Event) error {
		r.published = append(r.published, e)
		return nil
	})}
}

type mockCart struct {
	cartFn func(ctx context.Context, userID types.UserID) ([]domain.CartLine, error)
}

func (m *mockCart) Cart(ctx context.Context, userID types.UserID) ([]domain.CartLine, error) {
	return m.cartFn(ctx, userID)
}

type mockCatalog struct {
	productFn func(ctx context.Context, id types.ProductID) (domain.Product, error)
}

func (m *mockCatalog) Product(ctx context.Context, id types.ProductID) (domain.Product, error) {
	return m.productFn(ctx, id)
}

// --- Helpers ---

func productID(t *testing.T, s string) types.ProductID {
	t.Helper()
	id, err := types.ParseProductID(s)
	if err != nil {
		t.Fatalf("failed to parse product id: %v", err)
	}
	return id
}

func cartOf(lines ...domain.CartLine) *mockCart {
	return &mockCart{cartFn: func(ctx context.Context, userID types.UserID) ([]domain.CartLine, error) {
		return lines, nil
	}}
}

func catalogOf(products ...domain.Product) *mockCatalog {
	byID := make(map[types.ProductID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockCatalog{productFn: func(ctx context.Context, id types.ProductID) (domain.Product, error) {
		p, ok := byID[id]
		if !ok {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return p, nil
	}}
}

func validCommand() commands.CreateOrderCommand {
	return commands.CreateOrderCommand{
		UserID:  "u1",
		Street:  "221B MG Road",
		City:    "Pune",
		State:   "MH",
		PinCode: "411001",
		Country: "India",
	}
}

func pendingOrder(t *testing.T, owner string, status domain.Status) *domain.Order {
	t.Helper()
	userID, _ := types.ParseUserID(owner)
	addr, _ := types.NewAddress("1 Main St", "Pune", "MH", "411001", "India")
	line, err := domain.NewLineItem(productID(t, "p1"), "Kurta", 1, types.MustNewMoney(10000, "INR"))
	if err != nil {
		t.Fatalf("failed to create line: %v", err)
	}
	now := time.Now()
	return domain.Reconstitute(types.NewOrderID(), userID, []domain.LineItem{line}, addr, status, line.Price, now, now, 3)
}

// --- CreateOrder ---

func TestCreateOrderHandler_Handle_Success(t *testing.T) {
	p1 := productID(t, "p1")
	var saved *domain.Order
	repo := &mockOrderRepository{saveFn: func(ctx context.Context, order *domain.Order) error {
		saved = order
		return nil
	}}
	registry := &recordingRegistry{}

	handler := commands.NewCreateOrderHandler(repo, passThroughScope(), registry,
		cartOf(domain.CartLine{ProductID: p1, Quantity: 2}),
		catalogOf(domain.Product{ID: p1, Title: "Kurta", Price: types.MustNewMoney(10000, "INR"), Stock: 10}),
	)

	order, err := handler.Handle(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved != order {
		t.Error("expected the returned order to be the saved one")
	}
	if order.Status() != domain.StatusPending {
		t.Errorf("expected status 'pending', got '%s'", order.Status())
	}
	if !order.Total().Equals(types.MustNewMoney(20000, "INR")) {
		t.Errorf("expected total 200.00 INR, got %s", order.Total())
	}
	if len(registry.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(registry.published))
	}
	if registry.published[0].EventType() != contracts.OrderCreatedEventType {
		t.Errorf("expected %s, got %s", contracts.OrderCreatedEventType, registry.published[0].EventType())
	}
	if len(order.DomainEvents()) != 0 {
		t.Error("expected domain events to be drained after commit")
	}
}

func TestCreateOrderHandler_Handle_MergesRepeatedProducts(t *testing.T) {
	p1 := productID(t, "p1")
	var lookups atomic.Int32
	catalog := &mockCatalog{productFn: func(ctx context.Context, id types.ProductID) (domain.Product, error) {
		lookups.Add(1)
		return domain.Product{ID: p1, Title: "Kurta", Price: types.MustNewMoney(10000, "INR"), Stock: 3}, nil
	}}
	repo := &mockOrderRepository{saveFn: func(ctx context.Context, order *domain.Order) error { return nil }}

	handler := commands.NewCreateOrderHandler(repo, passThroughScope(), &recordingRegistry{},
		cartOf(domain.CartLine{ProductID: p1, Quantity: 1}, domain.CartLine{ProductID: p1, Quantity: 2}),
		catalog,
	)

	order, err := handler.Handle(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookups.Load() != 1 {
		t.Errorf("expected 1 catalog lookup, got %d", lookups.Load())
	}
	if len(order.Items()) != 1 || order.Items()[0].Quantity != 3 {
		t.Errorf("expected one line of quantity 3, got %+v", order.Items())
	}
}

func TestCreateOrderHandler_Handle_MergedQuantityOverflow(t *testing.T) {
	p1 := productID(t, "p1")
	catalog := &mockCatalog{productFn: func(ctx context.Context, id types.ProductID) (domain.Product, error) {
		t.Error("catalog must not be consulted for an overflowing cart")
		return domain.Product{}, nil
	}}
	repo := &mockOrderRepository{saveFn: func(ctx context.Context, order *domain.Order) error {
		t.Error("nothing may be saved")
		return nil
	}}

	handler := commands.NewCreateOrderHandler(repo, passThroughScope(), &recordingRegistry{},
		cartOf(domain.CartLine{ProductID: p1, Quantity: math.MaxInt}, domain.CartLine{ProductID: p1, Quantity: 1}),
		catalog,
	)

	_, err := handler.Handle(context.Background(), validCommand())
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCreateOrderHandler_Handle_NothingPersistedOnFailure(t *testing.T) {
	p1, p2 := productID(t, "p1"), productID(t, "p2")
	inStock := domain.Product{ID: p1, Title: "Kurta", Price: types.MustNewMoney(10000, "INR"), Stock: 10}
	lowStock := domain.Product{ID: p2, Title: "Dupatta", Price: types.MustNewMoney(5000, "INR"), Stock: 1}
	twoLines := cartOf(domain.CartLine{ProductID: p1, Quantity: 2}, domain.CartLine{ProductID: p2, Quantity: 2})

	tests := []struct {
		name    string
		cmd     commands.CreateOrderCommand
		cart    *mockCart
		catalog *mockCatalog
		wantErr error
	}{
		{
			name:    "insufficient stock on one line",
			cmd:     validCommand(),
			cart:    twoLines,
			catalog: catalogOf(inStock, lowStock),
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name:    "empty cart",
			cmd:     validCommand(),
			cart:    cartOf(),
			catalog: catalogOf(inStock),
			wantErr: domain.ErrEmptyCart,
		},
		{
			name:    "unknown product",
			cmd:     validCommand(),
			cart:    twoLines,
			catalog: catalogOf(inStock),
			wantErr: domain.ErrProductNotFound,
		},
		{
			name: "catalog down",
			cmd:  validCommand(),
			cart: twoLines,
			catalog: &mockCatalog{productFn: func(ctx context.Context, id types.ProductID) (domain.Product, error) {
				return domain.Product{}, types.ErrUpstreamUnavailable
			}},
			wantErr: types.ErrUpstreamUnavailable,
		},
		{
			name:    "mixed currencies",
			cmd:     validCommand(),
			cart:    twoLines,
			catalog: catalogOf(inStock, domain.Product{ID: p2, Title: "Dupatta", Price: types.MustNewMoney(500, "USD"), Stock: 5}),
			wantErr: types.ErrMixedCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepository{saveFn: func(ctx context.Context, order *domain.Order) error {
				t.Fatal("save must not be called")
				return nil
			}}
			registry := &recordingRegistry{}

			_, err := commands.NewCreateOrderHandler(repo, passThroughScope(), registry, tt.cart, tt.catalog).
				Handle(context.Background(), tt.cmd)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(registry.published) != 0 {
				t.Errorf("expected no events, got %d", len(registry.published))
			}
		})
	}
}

func TestCreateOrderHandler_Handle_InvalidAddressSkipsUpstream(t *testing.T) {
	cart := &mockCart{cartFn: func(ctx context.Context, userID types.UserID) ([]domain.CartLine, error) {
		t.Fatal("cart must not be fetched")
		return nil, nil
	}}
	handler := commands.NewCreateOrderHandler(&mockOrderRepository{}, passThroughScope(), &recordingRegistry{}, cart, &mockCatalog{})

	cmd := validCommand()
	cmd.City = ""
	_, err := handler.Handle(context.Background(), cmd)

	if !errors.Is(err, types.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestCreateOrderHandler_Handle_TransactionFailure(t *testing.T) {
	p1 := productID(t, "p1")
	txErr := errors.New("commit failed")
	scope := &mockTransactionScope{executeFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return txErr
	}}
	repo := &mockOrderRepository{saveFn: func(ctx context.Context, order *domain.Order) error { return nil }}

	handler := commands.NewCreateOrderHandler(repo, scope, &recordingRegistry{},
		cartOf(domain.CartLine{ProductID: p1, Quantity: 1}),
		catalogOf(domain.Product{ID: p1, Title: "Kurta", Price: types.MustNewMoney(10000, "INR"), Stock: 1}),
	)

	if _, err := handler.Handle(context.Background(), validCommand()); !errors.Is(err, txErr) {
		t.Errorf("expected %v, got %v", txErr, err)
	}
}

// --- State transitions ---

func TestCancelOrderHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		status    domain.Status
		requester string
		wantErr   error
		wantSaved bool
	}{
		{"owner cancels pending", domain.StatusPending, "u1", nil, true},
		{"confirmed is not cancellable", domain.StatusConfirmed, "u1", domain.ErrNotCancellable, false},
		{"already cancelled", domain.StatusCancelled, "u1", domain.ErrNotCancellable, false},
		{"other user", domain.StatusPending, "u2", domain.ErrCancelForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := pendingOrder(t, "u1", tt.status)
			saved := false
			repo := &mockOrderRepository{
				findByIDFn: func(ctx context.Context, id types.OrderID) (*domain.Order, error) { return order, nil },
				saveFn: func(ctx context.Context, o *domain.Order) error {
					saved = true
					return nil
				},
			}
			registry := &recordingRegistry{}

			_, err := commands.NewCancelOrderHandler(repo, passThroughScope(), registry).Handle(context.Background(),
				commands.CancelOrderCommand{OrderID: order.ID().String(), UserID: tt.requester})

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if saved != tt.wantSaved {
				t.Errorf("expected saved=%v", tt.wantSaved)
			}
			if tt.wantSaved && len(registry.published) != 1 {
				t.Errorf("expected 1 status change event, got %d", len(registry.published))
			}
		})
	}
}

func TestCancelOrderHandler_Handle_InvalidID(t *testing.T) {
	repo := &mockOrderRepository{findByIDFn: func(ctx context.Context, id types.OrderID) (*domain.Order, error) {
		t.Fatal("repository must not be queried")
		return nil, nil
	}}

	_, err := commands.NewCancelOrderHandler(repo, passThroughScope(), &recordingRegistry{}).
		Handle(context.Background(), commands.CancelOrderCommand{OrderID: "not-a-valid-id", UserID: "u1"})

	if !errors.Is(err, domain.ErrInvalidOrderID) {
		t.Errorf("expected ErrInvalidOrderID, got %v", err)
	}
}

func TestConfirmOrderHandler_Handle_AlreadyConfirmedIsNoop(t *testing.T) {
	order := pendingOrder(t, "u1", domain.StatusConfirmed)
	repo := &mockOrderRepository{
		findByIDFn: func(ctx context.Context, id types.OrderID) (*domain.Order, error) { return order, nil },
		saveFn: func(ctx context.Context, o *domain.Order) error {
			t.Fatal("save must not be called")
			return nil
		},
	}
	registry := &recordingRegistry{}

	got, err := commands.NewConfirmOrderHandler(repo, passThroughScope(), registry).
		Handle(context.Background(), commands.ConfirmOrderCommand{OrderID: order.ID().String()})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status() != domain.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status())
	}
	if len(registry.published) != 0 {
		t.Errorf("expected no events, got %d", len(registry.published))
	}
}

func TestConfirmOrderHandler_Handle_ConcurrentUpdate(t *testing.T) {
	order := pendingOrder(t, "u1", domain.StatusPending)
	repo := &mockOrderRepository{
		findByIDFn: func(ctx context.Context, id types.OrderID) (*domain.Order, error) { return order, nil },
		saveFn: func(ctx context.Context, o *domain.Order) error {
			return types.ErrConcurrentUpdate
		},
	}

	_, err := commands.NewConfirmOrderHandler(repo, passThroughScope(), &recordingRegistry{}).
		Handle(context.Background(), commands.ConfirmOrderCommand{OrderID: order.ID().String()})

	if !errors.Is(err, types.ErrConcurrentUpdate) {
		t.Errorf("expected ErrConcurrentUpdate, got %v", err)
	}
}

func TestFulfilOrderHandler_Handle(t *testing.T) {
	order := pendingOrder(t, "u1", domain.StatusConfirmed)
	repo := &mockOrderRepository{
		findByIDFn: func(ctx context.Context, id types.OrderID) (*domain.Order, error) { return order, nil },
		saveFn:     func(ctx context.Context, o *domain.Order) error { return nil },
	}
	handler := commands.NewFulfilOrderHandler(repo, passThroughScope(), &recordingRegistry{})
	id := order.ID().String()

	if _, err := handler.Handle(context.Background(), commands.FulfilOrderCommand{OrderID: id, Step: commands.StepDeliver}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := handler.Handle(context.Background(), commands.FulfilOrderCommand{OrderID: id, Step: commands.StepShip}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := handler.Handle(context.Background(), commands.FulfilOrderCommand{OrderID: id, Step: commands.StepDeliver})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status() != domain.StatusDelivered {
		t.Errorf("expected delivered, got %s", got.Status())
	}
}
