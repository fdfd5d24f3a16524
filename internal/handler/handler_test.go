package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/purchase-cart/internal/domain/order"
	"github.com/xenking/purchase-cart/internal/storage/memory"
)

type orderResponse struct {
	OrderID    int64          `json:"order_id"`
	OrderPrice float64        `json:"order_price"`
	OrderVat   float64        `json:"order_vat"`
	Items      []itemResponse `json:"items"`
}

type itemResponse struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Vat       float64 `json:"vat"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type failingOrderRepo struct{}

func (failingOrderRepo) Save(_ context.Context, _ *order.Order) (*order.Order, error) {
	return nil, errors.New("database unreachable")
}

func seededPrices(t *testing.T) *memory.PriceRepository {
	t.Helper()
	prices := memory.NewPriceRepository()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices.AddPrice(1, decimal.RequireFromString("10.00"), start)
	prices.AddVat(1, decimal.RequireFromString("0.20"), start)
	prices.AddPrice(2, decimal.RequireFromString("15.00"), start)
	prices.AddVat(2, decimal.RequireFromString("0.20"), start)
	return prices
}

func newServer(t *testing.T, orders order.Repository) *httptest.Server {
	t.Helper()
	svc := order.NewService(seededPrices(t), orders)
	mux := http.NewServeMux()
	New(svc).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func placeOrder(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/order", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPlaceOrder_OK(t *testing.T) {
	store := memory.NewOrderRepository()
	srv := newServer(t, store)

	resp := placeOrder(t, srv, `{"order":{"items":[
		{"product_id":1,"quantity":2},
		{"product_id":2,"quantity":1}
	]}}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(1), got.OrderID)
	assert.Equal(t, 35.00, got.OrderPrice)
	assert.Equal(t, 7.00, got.OrderVat)
	require.Len(t, got.Items, 2)
	assert.Equal(t, itemResponse{ProductID: 1, Quantity: 2, Price: 20.00, Vat: 4.00}, got.Items[0])
	assert.Equal(t, itemResponse{ProductID: 2, Quantity: 1, Price: 15.00, Vat: 3.00}, got.Items[1])

	assert.Equal(t, 1, store.Len())
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	srv := newServer(t, memory.NewOrderRepository())

	resp := placeOrder(t, srv, `{"order":{"items":[]}}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder_UnknownProducts(t *testing.T) {
	store := memory.NewOrderRepository()
	srv := newServer(t, store)

	resp := placeOrder(t, srv, `{"order":{"items":[
		{"product_id":1,"quantity":1},
		{"product_id":41,"quantity":1},
		{"product_id":42,"quantity":1}
	]}}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Contains(t, got.Message, "41, 42", "every missing ID must be reported")
	assert.Equal(t, 0, store.Len(), "nothing may be persisted on a failed order")
}

func TestPlaceOrder_FractionalQuantity(t *testing.T) {
	srv := newServer(t, memory.NewOrderRepository())

	resp := placeOrder(t, srv, `{"order":{"items":[{"product_id":1,"quantity":2.5}]}}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Contains(t, got.Message, "quantity must be an integer")
}

func TestPlaceOrder_StringProductID(t *testing.T) {
	srv := newServer(t, memory.NewOrderRepository())

	resp := placeOrder(t, srv, `{"order":{"items":[{"product_id":"1","quantity":1}]}}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder_NegativeQuantity(t *testing.T) {
	srv := newServer(t, memory.NewOrderRepository())

	resp := placeOrder(t, srv, `{"order":{"items":[{"product_id":1,"quantity":-2}]}}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	srv := newServer(t, memory.NewOrderRepository())

	for name, body := range map[string]string{
		"no order":      `{}`,
		"no items":      `{"order":{}}`,
		"no quantity":   `{"order":{"items":[{"product_id":1}]}}`,
		"no product id": `{"order":{"items":[{"quantity":1}]}}`,
		"not json":      `not json at all`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := placeOrder(t, srv, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestPlaceOrder_StoreFailure(t *testing.T) {
	srv := newServer(t, failingOrderRepo{})

	resp := placeOrder(t, srv, `{"order":{"items":[{"product_id":1,"quantity":1}]}}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "internal server error", got.Message, "internal failures must not leak details")
}
