package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/purchase-cart/internal/domain/pricing"
)

// getQuotesSQL resolves the latest effective price and VAT rate per product
// in one round trip. Price and VAT histories are resolved independently: each
// DISTINCT ON picks the record with the most recent start_date not after
// now(), and the join drops products missing either history.
const getQuotesSQL = `WITH latest_price AS (
	SELECT DISTINCT ON (item_id) item_id, price
	FROM pricing
	WHERE item_id = ANY($1) AND start_date <= now()
	ORDER BY item_id, start_date DESC
), latest_vat AS (
	SELECT DISTINCT ON (item_id) item_id, rate
	FROM vat
	WHERE item_id = ANY($1) AND start_date <= now()
	ORDER BY item_id, start_date DESC
)
SELECT p.item_id, p.price, v.rate
FROM latest_price p
JOIN latest_vat v USING (item_id)`

var _ pricing.Repository = (*PriceRepository)(nil)

// PriceRepository implements pricing.Repository backed by PostgreSQL.
type PriceRepository struct {
	db DB
}

// NewPriceRepository returns a PriceRepository that uses the given pool.
func NewPriceRepository(db DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetQuotes returns the currently-effective quote for each of the given
// product IDs. Products with no effective price or VAT record are absent from
// the result. The lookup is read-only and takes no locks.
func (r *PriceRepository) GetQuotes(ctx context.Context, ids []int64) (map[int64]pricing.Quote, error) {
	quotes := make(map[int64]pricing.Quote, len(ids))
	if len(ids) == 0 {
		return quotes, nil
	}

	rows, err := r.db.Query(ctx, getQuotesSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}

	collected, err := pgx.CollectRows(rows, scanQuote)
	if err != nil {
		return nil, fmt.Errorf("scanning quotes: %w", err)
	}

	for _, q := range collected {
		quotes[q.ProductID] = q
	}
	return quotes, nil
}

func scanQuote(row pgx.CollectableRow) (pricing.Quote, error) {
	var q pricing.Quote
	err := row.Scan(&q.ProductID, &q.UnitPrice, &q.VatRate)
	return q, err
}
