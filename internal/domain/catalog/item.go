package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("item not found")

// Currency identifies the currency an item is priced in.
type Currency string

const (
	USD Currency = "usd"
	EUR Currency = "eur"
)

// ParseCurrency validates and normalizes a currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case USD, EUR:
		return Currency(s), nil
	default:
		return "", errors.Errorf("unsupported currency: %q", s)
	}
}

// Item represents a priced catalog entry owned by a single user. Orders
// reference items by ID; they never copy prices.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    Currency
	OwnerID     string
}

// Validate checks the invariants enforced at item creation time.
func (i *Item) Validate() error {
	if i.Name == "" {
		return errors.New("item name is required")
	}
	if i.Price.IsNegative() {
		return errors.New("item price must not be negative")
	}
	if _, err := ParseCurrency(string(i.Currency)); err != nil {
		return err
	}
	return nil
}

// Repository defines catalog persistence. Reads are owner-scoped: an item
// that exists but belongs to another user behaves as not found.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, ownerID string) ([]Item, error)
	GetByID(ctx context.Context, ownerID, id string) (*Item, error)
	GetByIDs(ctx context.Context, ownerID string, ids []string) ([]Item, error)
}
