package order

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for order input validation.
var (
	ErrEmptyLines = errors.New("order must contain at least one line")
	ErrNilOrder   = errors.New("order must not be nil")
)

// InvalidProductIDError indicates a requested line carries a non-positive
// product ID.
type InvalidProductIDError struct {
	ProductID int64
}

func (e *InvalidProductIDError) Error() string {
	return fmt.Sprintf("product id must be greater than 0, got %d", e.ProductID)
}

// InvalidQuantityError indicates a requested line carries a non-positive
// quantity.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d, got %d", e.ProductID, e.Quantity)
}

// MissingPricesError indicates that one or more requested products have no
// resolvable price or VAT history. ProductIDs holds every offending ID, in
// first-occurrence request order, so callers see the full set at once.
type MissingPricesError struct {
	ProductIDs []int64
}

func (e *MissingPricesError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return "no prices found for product IDs: " + strings.Join(ids, ", ")
}

// ValidationError indicates an order failed a store's structural invariant
// check. Field names follow the persisted column naming (ItemId, Quantity,
// Price, VatValue, Total, TotalVat).
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}
