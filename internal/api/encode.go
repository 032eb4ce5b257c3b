package api

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"ordercart/internal/checkout"
	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/order"
	"ordercart/internal/domain/policy"
)

// maxBodyBytes bounds request body reads.
const maxBodyBytes = 1 << 20

// writeJSON writes the encoder's buffer as a JSON response.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the standard {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// validation failures to 400/422, missing references to 404, and payment
// processor failures to 502. Anything else is an internal error.
func writeDomainError(w http.ResponseWriter, err error) {
	var iqErr *order.InvalidQuantityError
	switch {
	case errors.As(err, &iqErr):
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
	case errors.Is(err, order.ErrMixedCurrencies):
		writeError(w, http.StatusUnprocessableEntity, order.ErrMixedCurrencies.Error())
	case errors.Is(err, order.ErrEmptyOrder):
		writeError(w, http.StatusUnprocessableEntity, order.ErrEmptyOrder.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, policy.ErrDiscountNotFound):
		writeError(w, http.StatusNotFound, "discount not found")
	case errors.Is(err, policy.ErrTaxNotFound):
		writeError(w, http.StatusNotFound, "tax not found")
	case isSessionError(err):
		writeError(w, http.StatusBadGateway, "payment processor unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isSessionError(err error) bool {
	var se *checkout.SessionError
	return errors.As(err, &se)
}

// decodeBody reads a bounded request body and decodes it as a JSON object,
// dispatching each key to fn.
func decodeBody(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	d := jx.DecodeBytes(data)
	return d.Obj(fn)
}

// encodeItem writes one catalog item object.
func encodeItem(e *jx.Encoder, item *catalog.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(item.ID)
	e.FieldStart("name")
	e.Str(item.Name)
	e.FieldStart("description")
	e.Str(item.Description)
	e.FieldStart("price")
	e.Str(item.Price.StringFixed(2))
	e.FieldStart("currency")
	e.Str(string(item.Currency))
	e.ObjEnd()
}

// encodeOrder writes one order object with its priced lines.
func encodeOrder(e *jx.Encoder, o *order.Order, lines []order.LineItem) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("currency")
	e.Str(string(o.Currency))
	e.FieldStart("total_price")
	e.Str(o.Total.StringFixed(2))
	if o.CouponID != "" {
		e.FieldStart("coupon_id")
		e.Str(o.CouponID)
	}
	if o.TaxID != "" {
		e.FieldStart("tax_id")
		e.Str(o.TaxID)
	}
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("item_id")
		e.Str(l.ItemID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("unit_price")
		e.Str(l.UnitPrice.StringFixed(2))
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
