// Package handler is the HTTP adapter for the order-processing core. It owns
// request decoding, response encoding, and the mapping of domain failures to
// status codes; all business rules live in the domain packages.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/purchase-cart/internal/domain/order"
)

// Handler serves the purchase-cart JSON API.
type Handler struct {
	orders *order.Service
}

// New constructs a Handler around the order service.
func New(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes registers all API endpoints on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/order", h.PlaceOrder)
}

// writeJSON writes an encoded JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes the standard error body {"code":N,"message":"..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e.Bytes())
}
