package order

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RequestedLine is a single product/quantity pair as supplied by the caller,
// before any pricing has been resolved.
type RequestedLine struct {
	ProductID int64
	Quantity  int
}

// Line is a priced order line. Price is the line total (unit price times
// quantity) and VatValue is the VAT charged on that total. Lines are created
// once by the calculator and never modified afterwards.
type Line struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	VatValue  decimal.Decimal
}

// Order is a computed order. ID stays zero until the order has been
// persisted; Total and TotalVat are the sums of the line values.
type Order struct {
	ID       int64
	Total    decimal.Decimal
	TotalVat decimal.Decimal
	Date     time.Time
	Lines    []Line
}

// Repository persists orders.
type Repository interface {
	// Save stores the order header and all of its lines as a single atomic
	// unit and returns the order with its newly assigned ID. A failed save
	// leaves no partial state behind. Saving the same content twice produces
	// two distinct orders.
	Save(ctx context.Context, o *Order) (*Order, error)
}

// Validate checks the structural invariants every store must enforce before
// persisting, independently of whoever produced the order. It does not
// verify that Total equals the sum of the line values; the aggregate is
// trusted as supplied.
func Validate(o *Order) error {
	if o == nil {
		return ErrNilOrder
	}
	if len(o.Lines) == 0 {
		return ErrEmptyLines
	}
	for _, ln := range o.Lines {
		if ln.ProductID <= 0 {
			return &ValidationError{Field: "ItemId", Value: strconv.FormatInt(ln.ProductID, 10)}
		}
		if ln.Quantity <= 0 {
			return &ValidationError{Field: "Quantity", Value: strconv.Itoa(ln.Quantity)}
		}
		if ln.Price.IsNegative() {
			return &ValidationError{Field: "Price", Value: ln.Price.String()}
		}
		if ln.VatValue.IsNegative() {
			return &ValidationError{Field: "VatValue", Value: ln.VatValue.String()}
		}
	}
	if o.Total.IsNegative() {
		return &ValidationError{Field: "Total", Value: o.Total.String()}
	}
	if o.TotalVat.IsNegative() {
		return &ValidationError{Field: "TotalVat", Value: o.TotalVat.String()}
	}
	return nil
}
