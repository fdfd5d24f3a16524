package postgres

import (
	"context"
	"fmt"

	"github.com/xenking/purchase-cart/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (total, total_vat, date)
	VALUES ($1, $2, $3)
	RETURNING id`

	insertOrderLineSQL = `INSERT INTO order_items (order_id, item_id, quantity, price, vat_value)
	VALUES ($1, $2, $3, $4, $5)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save persists the order header and its lines in a single transaction. The
// header insert returns the generated ID, which the line inserts reference.
// Any failure rolls the whole transaction back, leaving no partial rows.
// Structural invariants are revalidated here before any SQL is issued, since
// the store may be fed by producers other than the calculator.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) (*order.Order, error) {
	if err := order.Validate(o); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id int64
	if err := tx.QueryRow(ctx, insertOrderSQL, o.Total, o.TotalVat, o.Date).Scan(&id); err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	for _, ln := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderLineSQL, id, ln.ProductID, ln.Quantity, ln.Price, ln.VatValue); err != nil {
			return nil, fmt.Errorf("inserting order line for item %d: %w", ln.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	o.ID = id
	return o, nil
}
