// Package memory provides in-memory implementations of the pricing and order
// repositories. They honour the same contracts as the PostgreSQL backends
// (latest-effective-date resolution, structural validation, assigned IDs) and
// serve as test doubles and as a storage substitute for local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/purchase-cart/internal/domain/order"
	"github.com/xenking/purchase-cart/internal/domain/pricing"
)

// record is one entry of an append-only price or VAT history.
type record struct {
	value     decimal.Decimal
	startDate time.Time
}

var _ pricing.Repository = (*PriceRepository)(nil)

// PriceRepository keeps per-product price and VAT histories in memory.
type PriceRepository struct {
	mu     sync.RWMutex
	prices map[int64][]record
	vats   map[int64][]record
	now    func() time.Time
}

// NewPriceRepository returns an empty PriceRepository.
func NewPriceRepository() *PriceRepository {
	return &PriceRepository{
		prices: make(map[int64][]record),
		vats:   make(map[int64][]record),
		now:    time.Now,
	}
}

// AddPrice appends a price record effective from startDate.
func (r *PriceRepository) AddPrice(productID int64, price decimal.Decimal, startDate time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices[productID] = append(r.prices[productID], record{value: price, startDate: startDate})
}

// AddVat appends a VAT rate record effective from startDate.
func (r *PriceRepository) AddVat(productID int64, rate decimal.Decimal, startDate time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vats[productID] = append(r.vats[productID], record{value: rate, startDate: startDate})
}

// GetQuotes resolves the latest effective price and VAT per product. Price
// and VAT histories are resolved independently; a product missing either is
// absent from the result.
func (r *PriceRepository) GetQuotes(_ context.Context, ids []int64) (map[int64]pricing.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	quotes := make(map[int64]pricing.Quote, len(ids))
	for _, id := range ids {
		price, ok := latest(r.prices[id], now)
		if !ok {
			continue
		}
		rate, ok := latest(r.vats[id], now)
		if !ok {
			continue
		}
		quotes[id] = pricing.Quote{ProductID: id, UnitPrice: price, VatRate: rate}
	}
	return quotes, nil
}

// latest picks the record with the most recent startDate not after now.
func latest(history []record, now time.Time) (decimal.Decimal, bool) {
	var (
		best  record
		found bool
	)
	for _, rec := range history {
		if rec.startDate.After(now) {
			continue
		}
		if !found || rec.startDate.After(best.startDate) {
			best = rec
			found = true
		}
	}
	return best.value, found
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository stores orders in memory, assigning sequential IDs.
type OrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*order.Order
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]*order.Order)}
}

// Save validates the order, assigns the next free ID, and stores a copy.
// Every call produces a new order; equal content is never de-duplicated.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) (*order.Order, error) {
	if err := order.Validate(o); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	o.ID = r.nextID

	stored := *o
	stored.Lines = make([]order.Line, len(o.Lines))
	copy(stored.Lines, o.Lines)
	r.orders[o.ID] = &stored

	return o, nil
}

// Get returns the stored order with the given ID.
func (r *OrderRepository) Get(id int64) (*order.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	return o, ok
}

// Len reports how many orders have been stored.
func (r *OrderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}
