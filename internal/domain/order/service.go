package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/purchase-cart/internal/domain/pricing"
)

// Service computes and persists orders. It is stateless between calls; the
// only shared state is whatever the injected repositories hold.
type Service struct {
	prices pricing.Repository
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(prices pricing.Repository, orders Repository) *Service {
	return &Service{
		prices: prices,
		orders: orders,
		now:    time.Now,
	}
}

// ComputeOrder resolves current prices for the requested lines and builds an
// unpersisted Order. Lines keep their input order; the order totals are
// accumulated from the line values so Total is always the exact sum of the
// lines. No ID is assigned here.
func (s *Service) ComputeOrder(ctx context.Context, lines []RequestedLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}

	// Validate input and collect the distinct product IDs for one batch lookup.
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, ln := range lines {
		if ln.ProductID <= 0 {
			return nil, &InvalidProductIDError{ProductID: ln.ProductID}
		}
		if ln.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: ln.ProductID, Quantity: ln.Quantity}
		}
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}

	quotes, err := s.prices.GetQuotes(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve prices")
	}

	// Report every unresolvable product at once, not just the first.
	var missing []int64
	for _, id := range ids {
		if _, ok := quotes[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingPricesError{ProductIDs: missing}
	}

	orderLines := make([]Line, len(lines))
	total := decimal.Zero
	totalVat := decimal.Zero
	for i, ln := range lines {
		q := quotes[ln.ProductID]
		price := q.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		vat := price.Mul(q.VatRate)

		orderLines[i] = Line{
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			Price:     price,
			VatValue:  vat,
		}
		total = total.Add(price)
		totalVat = totalVat.Add(vat)
	}

	return &Order{
		Total:    total,
		TotalVat: totalVat,
		Date:     s.now().UTC(),
		Lines:    orderLines,
	}, nil
}

// PlaceOrder computes an order and persists it, returning the order with its
// assigned ID. On any failure nothing is persisted and the in-memory order is
// discarded; the caller may retry the whole operation.
func (s *Service) PlaceOrder(ctx context.Context, lines []RequestedLine) (*Order, error) {
	o, err := s.ComputeOrder(ctx, lines)
	if err != nil {
		return nil, err
	}

	saved, err := s.orders.Save(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	return saved, nil
}
