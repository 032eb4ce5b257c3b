package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"ordercart/internal/domain/order"
)

// createOrder starts a new empty order for the caller.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Create(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.ordersCreated.Add(r.Context(), 1)

	e := &jx.Encoder{}
	encodeOrder(e, o, nil)
	writeJSON(w, http.StatusCreated, e)
}

// getOrder returns an order with its priced lines. Reading never reprices
// persisted state.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, lines, err := h.orders.Detail(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o, lines)
	writeJSON(w, http.StatusOK, e)
}

// addOrderItem merges an item quantity into the order and returns the
// repriced order.
func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var (
		itemID   string
		quantity int
	)
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "item_id":
			v, err := d.Str()
			itemID = v
			return err
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.orders.AddItem(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"), itemID, quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// removeOrderItem drops an item's line from the order. Absent lines are a
// no-op.
func (h *Handler) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RemoveItem(
		r.Context(),
		UserFromContext(r.Context()),
		r.PathValue("orderID"),
		r.PathValue("itemID"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// applyDiscount attaches a discount to the order.
func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var couponID string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "coupon_id":
			v, err := d.Str()
			couponID = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.orders.ApplyDiscount(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"), couponID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// clearDiscount detaches the order's discount.
func (h *Handler) clearDiscount(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ClearDiscount(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// applyTax attaches a tax policy to the order.
func (h *Handler) applyTax(w http.ResponseWriter, r *http.Request) {
	var taxID string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "tax_id":
			v, err := d.Str()
			taxID = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.orders.ApplyTax(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"), taxID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// clearTax detaches the order's tax policy.
func (h *Handler) clearTax(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ClearTax(r.Context(), UserFromContext(r.Context()), r.PathValue("orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondOrder(w, r, o)
}

// checkoutOrder opens a payment session for the whole order.
func (h *Handler) checkoutOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.orders.Checkout(
		r.Context(),
		UserFromContext(r.Context()),
		r.PathValue("orderID"),
		h.successURL,
		h.cancelURL,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.checkoutSessions.Add(r.Context(), 1)

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("session_id")
	e.Str(sessionID)
	e.ObjEnd()
	writeJSON(w, http.StatusCreated, e)
}

// respondOrder re-reads the order's priced lines for the response body.
func (h *Handler) respondOrder(w http.ResponseWriter, r *http.Request, o *order.Order) {
	o, lines, err := h.orders.Detail(r.Context(), o.OwnerID, o.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o, lines)
	writeJSON(w, http.StatusOK, e)
}
