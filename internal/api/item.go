package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/catalog"
)

// listItems returns every catalog item owned by the caller.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListByOwner(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range items {
		encodeItem(e, &items[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

// createItem creates a catalog item owned by the caller.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	item := catalog.Item{
		ID:      uuid.New().String(),
		OwnerID: UserFromContext(r.Context()),
	}

	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			item.Name = v
			return err
		case "description":
			v, err := d.Str()
			item.Description = v
			return err
		case "price":
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.Price, err = decimal.NewFromString(v)
			return err
		case "currency":
			v, err := d.Str()
			item.Currency = catalog.Currency(v)
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := item.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.items.Create(r.Context(), &item); err != nil {
		writeDomainError(w, err)
		return
	}

	e := &jx.Encoder{}
	encodeItem(e, &item)
	writeJSON(w, http.StatusCreated, e)
}

// getItem returns a single item owned by the caller.
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetByID(r.Context(), UserFromContext(r.Context()), r.PathValue("itemID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e := &jx.Encoder{}
	encodeItem(e, item)
	writeJSON(w, http.StatusOK, e)
}

// buyItem opens a single-item checkout session and returns its identifier.
func (h *Handler) buyItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.orders.BuyItem(
		r.Context(),
		UserFromContext(r.Context()),
		r.PathValue("itemID"),
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
