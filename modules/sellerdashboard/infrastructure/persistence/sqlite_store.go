// Package persistence stores seller dashboard projections in SQLite.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kunalsingh7053/VyaparX/modules/sellerdashboard/domain"
)

const driverName = "sqlite"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		price INTEGER NOT NULL,
		currency TEXT NOT NULL,
		stock INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS products_by_seller ON products (seller_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		total_amount INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		status_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		title TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL,
		PRIMARY KEY (order_id, product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_by_product ON order_items (product_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		provider_order_id TEXT NOT NULL,
		provider_payment_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		status_at INTEGER NOT NULL
	)`,
}

// SQLiteStore implements domain.ProjectionStore.
// Timestamps are stored as Unix nanoseconds so the staleness guard is an
// integer comparison.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the projection database at dsn and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening projection store: %w", err)
	}

	// Single writer; also keeps an in-memory database on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying projection schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, role, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			role = excluded.role,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at > users.updated_at`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", u.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, seller_id, title, price, currency, stock, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seller_id = excluded.seller_id,
			title = excluded.title,
			price = excluded.price,
			currency = excluded.currency,
			stock = excluded.stock,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at > products.updated_at`,
		p.ID, p.SellerID, p.Title, p.Price, p.Currency, p.Stock, p.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upserting product %s: %w", p.ID, err)
	}
	return nil
}

// UpsertOrder records the creation snapshot. A status change that arrived
// first has already created the row; the snapshot fills it in and the
// status only moves if this event is newer.
func (s *SQLiteStore) UpsertOrder(ctx context.Context, o domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, currency, status, status_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			total_amount = excluded.total_amount,
			currency = excluded.currency,
			status = CASE WHEN excluded.status_at > orders.status_at THEN excluded.status ELSE orders.status END,
			status_at = MAX(orders.status_at, excluded.status_at)`,
		o.ID, o.UserID, o.TotalAmount, o.Currency, o.Status, o.StatusAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, title, quantity, amount, currency)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(order_id, product_id) DO NOTHING`,
			o.ID, item.ProductID, item.Title, item.Quantity, item.Amount, item.Currency)
		if err != nil {
			return fmt.Errorf("inserting item %s of order %s: %w", item.ProductID, o.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, orderID, userID, status string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, status_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			status_at = excluded.status_at
		WHERE excluded.status_at > orders.status_at`,
		orderID, userID, status, at.UnixNano())
	if err != nil {
		return fmt.Errorf("updating status of order %s: %w", orderID, err)
	}
	return nil
}

// UpsertPayment merges initiation and completion in either order. Non-empty
// identifiers are kept once known.
func (s *SQLiteStore) UpsertPayment(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, user_id, provider_order_id, provider_payment_id, amount, currency, status, status_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_id = excluded.order_id,
			user_id = excluded.user_id,
			provider_order_id = CASE WHEN excluded.provider_order_id != '' THEN excluded.provider_order_id ELSE payments.provider_order_id END,
			provider_payment_id = CASE WHEN excluded.provider_payment_id != '' THEN excluded.provider_payment_id ELSE payments.provider_payment_id END,
			amount = excluded.amount,
			currency = excluded.currency,
			status = CASE WHEN excluded.status_at > payments.status_at THEN excluded.status ELSE payments.status END,
			status_at = MAX(payments.status_at, excluded.status_at)`,
		p.ID, p.OrderID, p.UserID, p.ProviderOrderID, p.ProviderPaymentID, p.Amount, p.Currency, p.Status, p.StatusAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upserting payment %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) FindUser(ctx context.Context, id string) (domain.User, error) {
	var (
		u  domain.User
		at int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, role, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &at)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	u.UpdatedAt = time.Unix(0, at).UTC()
	return u, nil
}

func (s *SQLiteStore) FindProduct(ctx context.Context, id string) (domain.Product, error) {
	var (
		p  domain.Product
		at int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, seller_id, title, price, currency, stock, updated_at FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.SellerID, &p.Title, &p.Price, &p.Currency, &p.Stock, &at)
	if err != nil {
		return domain.Product{}, notFound(err)
	}
	p.UpdatedAt = time.Unix(0, at).UTC()
	return p, nil
}

func (s *SQLiteStore) FindOrder(ctx context.Context, id string) (domain.Order, error) {
	var (
		o  domain.Order
		at int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, total_amount, currency, status, status_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Currency, &o.Status, &at)
	if err != nil {
		return domain.Order{}, notFound(err)
	}
	o.StatusAt = time.Unix(0, at).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, title, quantity, amount, currency FROM order_items WHERE order_id = ? ORDER BY product_id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Quantity, &item.Amount, &item.Currency); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (s *SQLiteStore) FindPayment(ctx context.Context, id string) (domain.Payment, error) {
	var (
		p  domain.Payment
		at int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, user_id, provider_order_id, provider_payment_id, amount, currency, status, status_at
		FROM payments WHERE id = ?`, id).
		Scan(&p.ID, &p.OrderID, &p.UserID, &p.ProviderOrderID, &p.ProviderPaymentID, &p.Amount, &p.Currency, &p.Status, &at)
	if err != nil {
		return domain.Payment{}, notFound(err)
	}
	p.StatusAt = time.Unix(0, at).UTC()
	return p, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

var _ domain.ProjectionStore = (*SQLiteStore)(nil)
