// Package api exposes the order-management HTTP surface: catalog items,
// order assembly, pricing policies, and checkout-session initiation.
package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/order"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// SuccessURL and CancelURL are the redirect targets handed to the
	// payment processor when a checkout session is opened.
	SuccessURL string
	CancelURL  string
	// APIKeyPepper is the HMAC key used to hash API keys before lookup.
	APIKeyPepper []byte
}

// Handler serves the JSON API, delegating business logic to the order
// service and the catalog repository.
type Handler struct {
	items      catalog.Repository
	orders     *order.Service
	apikeys    APIKeyRepository
	successURL string
	cancelURL  string
	pepper     []byte

	ordersCreated    metric.Int64Counter
	checkoutSessions metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	items catalog.Repository,
	orders *order.Service,
	apikeys APIKeyRepository,
	mp metric.MeterProvider,
) (*Handler, error) {
	meter := mp.Meter("ordercart.api")

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders created"))
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	checkoutSessions, err := meter.Int64Counter("checkout_sessions_total",
		metric.WithDescription("Checkout sessions opened"))
	if err != nil {
		return nil, errors.Wrap(err, "create sessions counter")
	}

	return &Handler{
		items:            items,
		orders:           orders,
		apikeys:          apikeys,
		successURL:       cfg.SuccessURL,
		cancelURL:        cfg.CancelURL,
		pepper:           cfg.APIKeyPepper,
		ordersCreated:    ordersCreated,
		checkoutSessions: checkoutSessions,
	}, nil
}

// Register mounts every API route on the mux. All routes require a valid
// API key; the key's user becomes the owner scope for every lookup.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/items", h.authenticate(h.listItems))
	mux.HandleFunc("POST /api/items", h.authenticate(h.createItem))
	mux.HandleFunc("GET /api/items/{itemID}", h.authenticate(h.getItem))
	mux.HandleFunc("POST /api/items/{itemID}/checkout", h.authenticate(h.buyItem))

	mux.HandleFunc("POST /api/orders", h.authenticate(h.createOrder))
	mux.HandleFunc("GET /api/orders/{orderID}", h.authenticate(h.getOrder))
	mux.HandleFunc("POST /api/orders/{orderID}/items", h.authenticate(h.addOrderItem))
	mux.HandleFunc("DELETE /api/orders/{orderID}/items/{itemID}", h.authenticate(h.removeOrderItem))
	mux.HandleFunc("PUT /api/orders/{orderID}/discount", h.authenticate(h.applyDiscount))
	mux.HandleFunc("DELETE /api/orders/{orderID}/discount", h.authenticate(h.clearDiscount))
	mux.HandleFunc("PUT /api/orders/{orderID}/tax", h.authenticate(h.applyTax))
	mux.HandleFunc("DELETE /api/orders/{orderID}/tax", h.authenticate(h.clearTax))
	mux.HandleFunc("POST /api/orders/{orderID}/checkout", h.authenticate(h.checkoutOrder))
}
