package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/payments/application/commands"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/persistence"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/provider"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
	"github.com/kunalsingh7053/VyaparX/modules/shared/transaction"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// --- Mocks ---

type mockPaymentRepository struct {
	saveFn                  func(ctx context.Context, p *domain.Payment) error
	findByIDFn              func(ctx context.Context, id types.PaymentID) (*domain.Payment, error)
	findByProviderOrderIDFn func(ctx context.Context, providerOrderID string) (*domain.Payment, error)
}

func (m *mockPaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	return m.saveFn(ctx, p)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id types.PaymentID) (*domain.Payment, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockPaymentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Payment, error) {
	return m.findByProviderOrderIDFn(ctx, providerOrderID)
}

type mockOrderGateway struct {
	orderFn func(ctx context.Context, id types.OrderID) (domain.Order, error)
}

func (m *mockOrderGateway) Order(ctx context.Context, id types.OrderID) (domain.Order, error) {
	return m.orderFn(ctx, id)
}

type mockProvider struct {
	createIntentFn func(ctx context.Context, receipt string, amount types.Money) (domain.Intent, error)
}

func (m *mockProvider) CreateIntent(ctx context.Context, receipt string, amount types.Money) (domain.Intent, error) {
	return m.createIntentFn(ctx, receipt, amount)
}

func (m *mockProvider) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	return provider.Verify(testSecret, providerOrderID, providerPaymentID, signature)
}

type mockPublisher struct {
	publishFn func(ctx context.Context, evts ...events.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	return m.publishFn(ctx, evts...)
}

type recordingRegistry struct {
	published []events.Event
}

func (r *recordingRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	return []events.Handler{eventbus.HandlerFunc(func(ctx context.Context, e events.Event) error {
		r.published = append(r.published, e)
		return nil
	})}
}

// --- Helpers ---

const testSecret = "key-secret"

func passThroughScope() transaction.Scope {
	return transaction.NewSerialScope()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userID(s string) types.UserID {
	id, _ := types.ParseUserID(s)
	return id
}

func recordingPublisher(into *[]events.Event) *mockPublisher {
	return &mockPublisher{publishFn: func(ctx context.Context, evts ...events.Event) error {
		*into = append(*into, evts...)
		return nil
	}}
}

func callback(providerOrderID, providerPaymentID, owner string) commands.VerifyPaymentCommand {
	return commands.VerifyPaymentCommand{
		ProviderOrderID:   providerOrderID,
		ProviderPaymentID: providerPaymentID,
		Signature:         provider.Sign(testSecret, providerOrderID, providerPaymentID),
		UserID:            owner,
		Email:             owner + "@example.com",
	}
}

// --- Initiate ---

func TestInitiatePaymentHandler_Handle_Success(t *testing.T) {
	orderID := types.NewOrderID()
	total := types.MustNewMoney(20000, "INR")
	orders := &mockOrderGateway{orderFn: func(ctx context.Context, id types.OrderID) (domain.Order, error) {
		return domain.Order{ID: id, UserID: userID("u1"), Payable: true, Total: total}, nil
	}}
	var receipt string
	prov := &mockProvider{createIntentFn: func(ctx context.Context, r string, amount types.Money) (domain.Intent, error) {
		receipt = r
		return domain.Intent{ProviderOrderID: "order_P1", Amount: amount, KeyID: "rzp_test"}, nil
	}}
	var saved *domain.Payment
	repo := &mockPaymentRepository{saveFn: func(ctx context.Context, p *domain.Payment) error {
		saved = p
		return nil
	}}
	registry := &recordingRegistry{}

	payment, intent, err := commands.NewInitiatePaymentHandler(repo, passThroughScope(), registry, orders, prov).
		Handle(context.Background(), commands.InitiatePaymentCommand{OrderID: orderID.String(), UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved != payment {
		t.Error("expected the returned payment to be the saved one")
	}
	if receipt != orderID.String() {
		t.Errorf("expected receipt %s, got %s", orderID, receipt)
	}
	if payment.Status() != domain.StatusPending || payment.ProviderOrderID() != "order_P1" {
		t.Errorf("unexpected payment: %s %s", payment.Status(), payment.ProviderOrderID())
	}
	if !payment.Price().Equals(total) {
		t.Errorf("expected price %s, got %s", total, payment.Price())
	}
	if intent.KeyID != "rzp_test" {
		t.Errorf("expected key id rzp_test, got %s", intent.KeyID)
	}
	if len(registry.published) != 1 || registry.published[0].EventType() != contracts.PaymentInitiatedEventType {
		t.Errorf("expected one PAYMENT_INITIATED event, got %v", registry.published)
	}
}

func TestInitiatePaymentHandler_Handle_Rejections(t *testing.T) {
	owned := func(payable bool) *mockOrderGateway {
		return &mockOrderGateway{orderFn: func(ctx context.Context, id types.OrderID) (domain.Order, error) {
			return domain.Order{ID: id, UserID: userID("u1"), Payable: payable, Total: types.MustNewMoney(100, "INR")}, nil
		}}
	}
	notFound := types.NewError(types.KindNotFound, "order_not_found", "Order not found")

	tests := []struct {
		name     string
		orderID  string
		userID   string
		orders   *mockOrderGateway
		provider error
		wantErr  error
	}{
		{"invalid order id", "not-an-id", "u1", owned(true), nil, domain.ErrInvalidOrderID},
		{"not the owner", types.NewOrderID().String(), "u2", owned(true), nil, domain.ErrPaymentForbidden},
		{"not payable", types.NewOrderID().String(), "u1", owned(false), nil, domain.ErrOrderNotPayable},
		{"unknown order", types.NewOrderID().String(), "u1", &mockOrderGateway{orderFn: func(ctx context.Context, id types.OrderID) (domain.Order, error) {
			return domain.Order{}, notFound
		}}, nil, notFound},
		{"provider down", types.NewOrderID().String(), "u1", owned(true), domain.ErrProviderRejected, domain.ErrProviderRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &mockProvider{createIntentFn: func(ctx context.Context, r string, amount types.Money) (domain.Intent, error) {
				if tt.provider != nil {
					return domain.Intent{}, tt.provider
				}
				t.Fatal("provider must not be called")
				return domain.Intent{}, nil
			}}
			repo := &mockPaymentRepository{saveFn: func(ctx context.Context, p *domain.Payment) error {
				t.Fatal("save must not be called")
				return nil
			}}

			_, _, err := commands.NewInitiatePaymentHandler(repo, passThroughScope(), &recordingRegistry{}, tt.orders, prov).
				Handle(context.Background(), commands.InitiatePaymentCommand{OrderID: tt.orderID, UserID: tt.userID})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// --- Verify ---

func seedPending(t *testing.T, repo *persistence.InMemoryRepository, providerOrderID string) *domain.Payment {
	t.Helper()
	p := domain.NewPayment(types.NewOrderID(), userID("u1"), providerOrderID, types.MustNewMoney(20000, "INR"))
	p.PopDomainEvents()
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("failed to save payment: %v", err)
	}
	return p
}

func TestVerifyPaymentHandler_Handle_CompletesOnce(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	seeded := seedPending(t, repo, "order_P1")
	registry := &recordingRegistry{}
	var failures []events.Event
	handler := commands.NewVerifyPaymentHandler(repo, passThroughScope(), registry, &mockProvider{}, recordingPublisher(&failures), discardLogger())

	cmd := callback("order_P1", "pay_1", "u1")
	first, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("replay: unexpected error: %v", err)
	}

	if first.ID() != seeded.ID() || second.ID() != seeded.ID() {
		t.Error("expected both callbacks to resolve to the seeded payment")
	}
	if second.Status() != domain.StatusCompleted || second.ProviderPaymentID() != "pay_1" {
		t.Errorf("unexpected stored payment: %s %s", second.Status(), second.ProviderPaymentID())
	}
	if len(registry.published) != 1 {
		t.Fatalf("expected exactly 1 PAYMENT_COMPLETED, got %d", len(registry.published))
	}
	completed := registry.published[0].(contracts.PaymentCompletedEvent)
	if completed.Email != "u1@example.com" || completed.Amount != 20000 {
		t.Errorf("unexpected event payload: %+v", completed)
	}
	if len(failures) != 0 {
		t.Errorf("expected no failure events, got %d", len(failures))
	}
}

func TestVerifyPaymentHandler_Handle_Failures(t *testing.T) {
	tests := []struct {
		name        string
		cmd         commands.VerifyPaymentCommand
		wantErr     error
		wantFailure bool
	}{
		{
			name: "bad signature",
			cmd: func() commands.VerifyPaymentCommand {
				c := callback("order_P1", "pay_1", "u1")
				c.Signature = provider.Sign("wrong-secret", "order_P1", "pay_1")
				return c
			}(),
			wantErr:     domain.ErrInvalidSignature,
			wantFailure: true,
		},
		{
			name: "missing fields",
			cmd: func() commands.VerifyPaymentCommand {
				c := callback("order_P1", "pay_1", "u1")
				c.ProviderPaymentID = ""
				return c
			}(),
			wantErr:     domain.ErrMissingCallback,
			wantFailure: true,
		},
		{
			name:        "unknown intent",
			cmd:         callback("order_nope", "pay_1", "u1"),
			wantErr:     domain.ErrPaymentNotFound,
			wantFailure: true,
		},
		{
			name:        "another user's payment",
			cmd:         callback("order_P1", "pay_1", "u2"),
			wantErr:     domain.ErrPaymentForbidden,
			wantFailure: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := persistence.NewInMemoryRepository()
			seedPending(t, repo, "order_P1")
			registry := &recordingRegistry{}
			var failures []events.Event
			handler := commands.NewVerifyPaymentHandler(repo, passThroughScope(), registry, &mockProvider{}, recordingPublisher(&failures), discardLogger())

			_, err := handler.Handle(context.Background(), tt.cmd)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := len(failures) == 1; got != tt.wantFailure {
				t.Errorf("expected failure event=%v, got %d events", tt.wantFailure, len(failures))
			}
			if tt.wantFailure {
				failed := failures[0].(contracts.PaymentFailedEvent)
				if failed.ProviderOrderID != tt.cmd.ProviderOrderID || failed.Reason == "" {
					t.Errorf("unexpected failure payload: %+v", failed)
				}
			}
			if len(registry.published) != 0 {
				t.Errorf("expected no committed events, got %d", len(registry.published))
			}

			stored, _ := repo.FindByProviderOrderID(context.Background(), "order_P1")
			if stored.Status() != domain.StatusPending {
				t.Errorf("expected payment to stay pending, got %s", stored.Status())
			}
		})
	}
}

func TestVerifyPaymentHandler_Handle_DifferentPaymentAfterCompletion(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	seedPending(t, repo, "order_P1")
	var failures []events.Event
	handler := commands.NewVerifyPaymentHandler(repo, passThroughScope(), &recordingRegistry{}, &mockProvider{}, recordingPublisher(&failures), discardLogger())

	if _, err := handler.Handle(context.Background(), callback("order_P1", "pay_1", "u1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := handler.Handle(context.Background(), callback("order_P1", "pay_2", "u1"))

	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
	if len(failures) != 1 {
		t.Errorf("expected 1 failure event, got %d", len(failures))
	}
}

func TestVerifyPaymentHandler_Handle_LostRaceIsReplay(t *testing.T) {
	pending := domain.NewPayment(types.NewOrderID(), userID("u1"), "order_P1", types.MustNewMoney(20000, "INR"))
	now := time.Now()
	winner := domain.Reconstitute(pending.ID(), pending.OrderID(), pending.UserID(), "order_P1", "pay_1", "sig",
		domain.StatusCompleted, pending.Price(), now, now, 2)

	lookups := 0
	repo := &mockPaymentRepository{
		findByProviderOrderIDFn: func(ctx context.Context, providerOrderID string) (*domain.Payment, error) {
			lookups++
			if lookups == 1 {
				return domain.Reconstitute(pending.ID(), pending.OrderID(), pending.UserID(), "order_P1", "", "",
					domain.StatusPending, pending.Price(), now, now, 1), nil
			}
			return winner, nil
		},
		saveFn: func(ctx context.Context, p *domain.Payment) error {
			return types.ErrConcurrentUpdate
		},
	}
	registry := &recordingRegistry{}
	var failures []events.Event

	got, err := commands.NewVerifyPaymentHandler(repo, passThroughScope(), registry, &mockProvider{}, recordingPublisher(&failures), discardLogger()).
		Handle(context.Background(), callback("order_P1", "pay_1", "u1"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != winner {
		t.Error("expected the winning payment to be returned")
	}
	if len(registry.published) != 0 || len(failures) != 0 {
		t.Errorf("expected no events, got %d committed and %d failures", len(registry.published), len(failures))
	}
}

func TestVerifyPaymentHandler_Handle_FailurePublishErrorIsLogged(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	publisher := &mockPublisher{publishFn: func(ctx context.Context, evts ...events.Event) error {
		return errors.New("broker down")
	}}
	handler := commands.NewVerifyPaymentHandler(repo, passThroughScope(), &recordingRegistry{}, &mockProvider{}, publisher, discardLogger())

	_, err := handler.Handle(context.Background(), callback("order_nope", "pay_1", "u1"))

	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected the verification error, got %v", err)
	}
}
