package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/kunalsingh7053/VyaparX/internal/platform/spanner"
	"github.com/kunalsingh7053/VyaparX/modules/payments/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

var paymentColumns = []string{
	"PaymentID", "OrderID", "UserID",
	"ProviderOrderID", "ProviderPaymentID", "Signature",
	"Status", "Amount", "Currency",
	"Version", "CreatedAt", "UpdatedAt",
}

type SpannerRepository struct {
	client *spanner.Client
}

func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

// Save persists a payment.
// It uses an existing transaction if available, otherwise creates a new one.
func (r *SpannerRepository) Save(ctx context.Context, payment *domain.Payment) error {
	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return r.saveWithTx(ctx, txn, payment)
	}

	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		return r.saveWithTx(ctx, txn, payment)
	})
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *SpannerRepository) saveWithTx(ctx context.Context, tx *spanner.ReadWriteTransaction, payment *domain.Payment) error {
	paymentID := payment.ID().String()

	if err := platformspanner.CheckVersion(ctx, tx, "Payments", spanner.Key{paymentID}, payment.Version()); err != nil {
		return err
	}

	return tx.BufferWrite([]*spanner.Mutation{
		spanner.InsertOrUpdate("Payments", paymentColumns, []interface{}{
			paymentID,
			payment.OrderID().String(),
			payment.UserID().String(),
			payment.ProviderOrderID(),
			payment.ProviderPaymentID(),
			payment.Signature(),
			payment.Status().String(),
			payment.Price().Amount(),
			payment.Price().Currency(),
			payment.Version() + 1,
			payment.CreatedAt(),
			payment.UpdatedAt(),
		}),
	})
}

func (r *SpannerRepository) FindByID(ctx context.Context, id types.PaymentID) (*domain.Payment, error) {
	reader, release := platformspanner.Reader(ctx, r.client)
	defer release()

	row, err := reader.ReadRow(ctx, "Payments", spanner.Key{id.String()}, paymentColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to read payment: %w", err)
	}
	return scanPayment(row)
}

func (r *SpannerRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Payment, error) {
	stmt := spanner.Statement{
		SQL: `SELECT PaymentID, OrderID, UserID,
		             ProviderOrderID, ProviderPaymentID, Signature,
		             Status, Amount, Currency,
		             Version, CreatedAt, UpdatedAt
		      FROM Payments@{FORCE_INDEX=PaymentsByProviderOrderID}
		      WHERE ProviderOrderID = @providerOrderID
		      ORDER BY CreatedAt DESC
		      LIMIT 1`,
		Params: map[string]interface{}{"providerOrderID": providerOrderID},
	}

	reader, release := platformspanner.Reader(ctx, r.client)
	defer release()

	iter := reader.Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return scanPayment(row)
}

func scanPayment(row *spanner.Row) (*domain.Payment, error) {
	var paymentID, orderID, userID string
	var providerOrderID, providerPaymentID, signature string
	var status, currency string
	var amount, version int64
	var createdAt, updatedAt time.Time

	if err := row.Columns(
		&paymentID, &orderID, &userID,
		&providerOrderID, &providerPaymentID, &signature,
		&status, &amount, &currency,
		&version, &createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	parsedPaymentID, err := types.ParsePaymentID(paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment id: %w", err)
	}
	parsedOrderID, err := types.ParseOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order id: %w", err)
	}
	parsedUserID, err := types.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	price, err := types.NewMoney(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price of payment %s: %w", paymentID, err)
	}
	if !domain.Status(status).IsValid() {
		return nil, fmt.Errorf("payment %s has unknown status %q", paymentID, status)
	}

	return domain.Reconstitute(
		parsedPaymentID,
		parsedOrderID,
		parsedUserID,
		providerOrderID,
		providerPaymentID,
		signature,
		domain.Status(status),
		price,
		createdAt,
		updatedAt,
		version,
	), nil
}
