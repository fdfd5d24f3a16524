package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/purchase-cart/internal/domain/order"
)

// maxBodySize bounds the request body; carts are small.
const maxBodySize = 1 << 20

// PlaceOrder decodes the order request, delegates to the order service, and
// renders the persisted order with 201 Created. Validation failures map to
// 400, unresolvable products and structural violations to 422, everything
// else to 500.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	lines, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), lines)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, encodeOrder(o))
}

// writeOrderError maps domain failures to HTTP responses. Validation failures
// are client errors; anything unrecognized is treated as a data-access
// failure and reported as a server error without leaking details.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyLines):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		ipErr *order.InvalidProductIDError
		iqErr *order.InvalidQuantityError
		mpErr *order.MissingPricesError
		vErr  *order.ValidationError
	)
	switch {
	case errors.As(err, &ipErr):
		writeError(w, http.StatusBadRequest, ipErr.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &mpErr):
		writeError(w, http.StatusUnprocessableEntity, mpErr.Error())
	case errors.As(err, &vErr):
		writeError(w, http.StatusUnprocessableEntity, vErr.Error())
	default:
		zctx.From(r.Context()).Error("place order failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeOrderRequest parses {"order":{"items":[{"product_id":N,"quantity":N}]}}.
// Numbers must be plain JSON integers; fractional or string-wrapped values
// are rejected so that "2.5 laptops" never silently truncates to 2.
func decodeOrderRequest(data []byte) ([]order.RequestedLine, error) {
	var (
		lines     []order.RequestedLine
		haveOrder bool
		haveItems bool
	)

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "order" {
			return d.Skip()
		}
		haveOrder = true
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "items" {
				return d.Skip()
			}
			haveItems = true
			return d.Arr(func(d *jx.Decoder) error {
				ln, err := decodeLine(d)
				if err != nil {
					return err
				}
				lines = append(lines, ln)
				return nil
			})
		})
	}); err != nil {
		return nil, errors.Wrap(err, "malformed order request")
	}

	if !haveOrder {
		return nil, errors.New("order is required")
	}
	if !haveItems {
		return nil, errors.New("order.items is required")
	}
	return lines, nil
}

func decodeLine(d *jx.Decoder) (order.RequestedLine, error) {
	var (
		ln      order.RequestedLine
		haveID  bool
		haveQty bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			v, err := decodeInt(d, "product_id")
			if err != nil {
				return err
			}
			ln.ProductID = v
			haveID = true
		case "quantity":
			v, err := decodeInt(d, "quantity")
			if err != nil {
				return err
			}
			ln.Quantity = int(v)
			haveQty = true
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return ln, err
	}

	if !haveID {
		return ln, errors.New("product_id is required")
	}
	if !haveQty {
		return ln, errors.New("quantity is required")
	}
	return ln, nil
}

// decodeInt accepts only integral JSON numbers: 2.5, "2", and true are all
// rejected.
func decodeInt(d *jx.Decoder, field string) (int64, error) {
	n, err := d.Num()
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", field)
	}
	if n.Str() || !n.IsInt() {
		return 0, errors.Errorf("%s must be an integer, got %s", field, n)
	}
	return n.Int64()
}

// encodeOrder renders the persisted order as the external response shape.
// Monetary values are written as plain JSON numbers with two decimal places.
func encodeOrder(o *order.Order) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order_id")
	e.Int64(o.ID)
	e.FieldStart("order_price")
	e.Num(decNum(o.Total))
	e.FieldStart("order_vat")
	e.Num(decNum(o.TotalVat))
	e.FieldStart("items")
	e.ArrStart()
	for _, ln := range o.Lines {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(ln.ProductID)
		e.FieldStart("quantity")
		e.Int(ln.Quantity)
		e.FieldStart("price")
		e.Num(decNum(ln.Price))
		e.FieldStart("vat")
		e.Num(decNum(ln.VatValue))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

func decNum(d decimal.Decimal) jx.Num {
	return jx.Num(d.StringFixed(2))
}
