package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/catalog"
)

// Sentinel errors for order lookup and validation.
var (
	// ErrNotFound is returned when an order does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("order not found")
	// ErrMixedCurrencies is returned when an order's items span more than
	// one currency.
	ErrMixedCurrencies = errors.New("all items in an order must share one currency")
	// ErrEmptyOrder is returned when checkout is requested for an order
	// with no lines.
	ErrEmptyOrder = errors.New("order has no items")
)

// InvalidQuantityError indicates an add request with a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.ItemID)
}

// Line associates one catalog item with an ordered quantity.
// Quantity is always at least 1: a line that would drop to zero is removed.
type Line struct {
	ItemID   string
	Quantity int
}

// Order is the aggregate root for a user's cart. Currency and Total are
// derived by the pricing engine; Currency is empty while the order has no
// lines. Mutations happen in memory and are persisted as one unit via
// Repository.Save.
type Order struct {
	ID        string
	OwnerID   string
	Currency  catalog.Currency
	Total     decimal.Decimal
	CouponID  string
	TaxID     string
	Lines     []Line
	CreatedAt time.Time
}

// New creates an empty order owned by the given user.
func New(ownerID string) *Order {
	return &Order{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Total:   decimal.Zero,
	}
}

// AddLine merges quantity into the existing line for itemID, or appends a
// new line. At most one line per item ever exists.
func (o *Order) AddLine(itemID string, quantity int) {
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			o.Lines[i].Quantity += quantity
			return
		}
	}
	o.Lines = append(o.Lines, Line{ItemID: itemID, Quantity: quantity})
}

// RemoveLine deletes the line for itemID. Removing an absent line is a
// no-op; it reports whether a line was removed.
func (o *Order) RemoveLine(itemID string) bool {
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Line returns the line for itemID, if present.
func (o *Order) Line(itemID string) (Line, bool) {
	for _, l := range o.Lines {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return Line{}, false
}

// Repository defines order persistence. Save must write the order row and
// its full line set in a single transaction so that readers never observe a
// stale total next to mutated lines.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, ownerID, id string) (*Order, error)
	Save(ctx context.Context, o *Order) error
}
