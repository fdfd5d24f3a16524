package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is the currently-effective unit price and VAT rate for a product,
// resolved at lookup time. Quotes are computed per request and never stored.
type Quote struct {
	ProductID int64
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal
}

// Repository resolves effective prices and VAT rates from the append-only
// pricing history.
type Repository interface {
	// GetQuotes returns a quote for every product ID that has both a price
	// and a VAT record effective at lookup time, in a single batch lookup.
	// Products with no resolvable history are absent from the result; callers
	// must check for missing entries themselves. An empty id set yields an
	// empty map and no error.
	GetQuotes(ctx context.Context, ids []int64) (map[int64]Quote, error)
}
