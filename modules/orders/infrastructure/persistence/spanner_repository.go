package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/kunalsingh7053/VyaparX/internal/platform/spanner"
	"github.com/kunalsingh7053/VyaparX/modules/orders/domain"
	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

// orderRow mirrors the Orders table.
type orderRow struct {
	OrderID       string    `spanner:"OrderID"`
	UserID        string    `spanner:"UserID"`
	Status        string    `spanner:"Status"`
	TotalAmount   int64     `spanner:"TotalAmount"`
	TotalCurrency string    `spanner:"TotalCurrency"`
	Street        string    `spanner:"Street"`
	City          string    `spanner:"City"`
	State         string    `spanner:"State"`
	PinCode       string    `spanner:"PinCode"`
	Country       string    `spanner:"Country"`
	Version       int64     `spanner:"Version"`
	CreatedAt     time.Time `spanner:"CreatedAt"`
	UpdatedAt     time.Time `spanner:"UpdatedAt"`
}

type orderItemRow struct {
	OrderID    string `spanner:"OrderID"`
	ItemIndex  int64  `spanner:"ItemIndex"`
	ProductID  string `spanner:"ProductID"`
	Title      string `spanner:"Title"`
	Quantity   int64  `spanner:"Quantity"`
	UnitAmount int64  `spanner:"UnitAmount"`
	LineAmount int64  `spanner:"LineAmount"`
	Currency   string `spanner:"Currency"`
}

var (
	orderColumns     = []string{"OrderID", "UserID", "Status", "TotalAmount", "TotalCurrency", "Street", "City", "State", "PinCode", "Country", "Version", "CreatedAt", "UpdatedAt"}
	orderItemColumns = []string{"OrderID", "ItemIndex", "ProductID", "Title", "Quantity", "UnitAmount", "LineAmount", "Currency"}
)

type SpannerRepository struct {
	client *spanner.Client
}

func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

// Save writes order inside the ambient transaction, or its own when there
// is none. Line items are immutable and only written on first save.
func (r *SpannerRepository) Save(ctx context.Context, order *domain.Order) error {
	if tx, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return r.save(ctx, tx, order)
	}
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		return r.save(ctx, tx, order)
	})
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.ID(), err)
	}
	return nil
}

func (r *SpannerRepository) save(ctx context.Context, tx *spanner.ReadWriteTransaction, order *domain.Order) error {
	if err := platformspanner.CheckVersion(ctx, tx, "Orders", spanner.Key{order.ID().String()}, order.Version()); err != nil {
		return err
	}

	addr := order.ShippingAddress()
	row, err := spanner.InsertOrUpdateStruct("Orders", orderRow{
		OrderID:       order.ID().String(),
		UserID:        order.UserID().String(),
		Status:        order.Status().String(),
		TotalAmount:   order.Total().Amount(),
		TotalCurrency: order.Total().Currency(),
		Street:        addr.Street(),
		City:          addr.City(),
		State:         addr.State(),
		PinCode:       addr.PinCode(),
		Country:       addr.Country(),
		Version:       order.Version() + 1,
		CreatedAt:     order.CreatedAt(),
		UpdatedAt:     order.UpdatedAt(),
	})
	if err != nil {
		return fmt.Errorf("build order mutation: %w", err)
	}
	mutations := []*spanner.Mutation{row}

	if order.Version() == 0 {
		for i, item := range order.Items() {
			m, err := spanner.InsertStruct("OrderItems", orderItemRow{
				OrderID:    order.ID().String(),
				ItemIndex:  int64(i),
				ProductID:  item.ProductID.String(),
				Title:      item.Title,
				Quantity:   int64(item.Quantity),
				UnitAmount: item.UnitPrice.Amount(),
				LineAmount: item.Price.Amount(),
				Currency:   item.Price.Currency(),
			})
			if err != nil {
				return fmt.Errorf("build order item mutation: %w", err)
			}
			mutations = append(mutations, m)
		}
	}
	return tx.BufferWrite(mutations)
}

func (r *SpannerRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	reader, release := platformspanner.Reader(ctx, r.client)
	defer release()

	row, err := reader.ReadRow(ctx, "Orders", spanner.Key{id.String()}, orderColumns)
	if spanner.ErrCode(err) == codes.NotFound {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read order %s: %w", id, err)
	}
	var stored orderRow
	if err := row.ToStruct(&stored); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	return r.load(ctx, reader, stored)
}

// FindByUserID pages through a user's orders, newest first. The count and
// the page come from the same snapshot.
func (r *SpannerRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	reader, release := platformspanner.Reader(ctx, r.client)
	defer release()

	var total int64
	count := reader.Query(ctx, spanner.Statement{
		SQL:    `SELECT COUNT(*) FROM Orders WHERE UserID = @userID`,
		Params: map[string]interface{}{"userID": userID.String()},
	})
	if err := count.Do(func(row *spanner.Row) error { return row.Column(0, &total) }); err != nil {
		return nil, 0, fmt.Errorf("count orders of %s: %w", userID, err)
	}

	var stored []orderRow
	page := reader.Query(ctx, spanner.Statement{
		SQL: `SELECT * FROM Orders@{FORCE_INDEX=OrdersByUserID}
		      WHERE UserID = @userID
		      ORDER BY CreatedAt DESC
		      LIMIT @limit OFFSET @offset`,
		Params: map[string]interface{}{
			"userID": userID.String(),
			"limit":  int64(limit),
			"offset": int64(offset),
		},
	})
	err := page.Do(func(row *spanner.Row) error {
		var o orderRow
		if err := row.ToStruct(&o); err != nil {
			return err
		}
		stored = append(stored, o)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders of %s: %w", userID, err)
	}

	orders := make([]*domain.Order, 0, len(stored))
	for _, o := range stored {
		order, err := r.load(ctx, reader, o)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, int(total), nil
}

func (r *SpannerRepository) load(ctx context.Context, reader platformspanner.ReadTransaction, o orderRow) (*domain.Order, error) {
	var items []domain.LineItem
	iter := reader.Read(ctx, "OrderItems", spanner.Key{o.OrderID}.AsPrefix(), orderItemColumns)
	err := iter.Do(func(row *spanner.Row) error {
		var it orderItemRow
		if err := row.ToStruct(&it); err != nil {
			return err
		}
		productID, err := types.ParseProductID(it.ProductID)
		if err != nil {
			return err
		}
		unit, err := types.NewMoney(it.UnitAmount, it.Currency)
		if err != nil {
			return err
		}
		line, err := types.NewMoney(it.LineAmount, it.Currency)
		if err != nil {
			return err
		}
		items = append(items, domain.LineItem{
			ProductID: productID,
			Title:     it.Title,
			Quantity:  int(it.Quantity),
			UnitPrice: unit,
			Price:     line,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read items of order %s: %w", o.OrderID, err)
	}

	orderID, err := types.ParseOrderID(o.OrderID)
	if err != nil {
		return nil, err
	}
	userID, err := types.ParseUserID(o.UserID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.OrderID, err)
	}
	address, err := types.NewAddress(o.Street, o.City, o.State, o.PinCode, o.Country)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.OrderID, err)
	}
	total, err := types.NewMoney(o.TotalAmount, o.TotalCurrency)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.OrderID, err)
	}
	if !domain.Status(o.Status).IsValid() {
		return nil, fmt.Errorf("order %s: unknown status %q", o.OrderID, o.Status)
	}

	return domain.Reconstitute(orderID, userID, items, address, domain.Status(o.Status), total, o.CreatedAt, o.UpdatedAt, o.Version), nil
}
