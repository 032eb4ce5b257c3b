// Package policy holds the optional pricing modifiers an order may carry:
// percentage discounts and tax rates. Both are read-shared catalog data;
// orders reference them by their external identifiers.
package policy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrDiscountNotFound is returned when no discount exists for a coupon ID.
	ErrDiscountNotFound = errors.New("discount not found")
	// ErrTaxNotFound is returned when no tax exists for a tax ID.
	ErrTaxNotFound = errors.New("tax not found")
	// ErrPercentOutOfRange is returned when a discount percentage is outside [0, 100].
	ErrPercentOutOfRange = errors.New("percent_off must be between 0 and 100")
	// ErrNegativePercentage is returned when a tax percentage is negative.
	ErrNegativePercentage = errors.New("tax percentage must not be negative")
)

// Duration enumerates how long a discount applies on the payment processor
// side. It is metadata only; nothing in the pricing engine expires discounts.
type Duration string

const (
	DurationOnce      Duration = "once"
	DurationRepeating Duration = "repeating"
	DurationForever   Duration = "forever"
)

var hundred = decimal.NewFromInt(100)

// Discount is a percentage-off modifier applied to an order subtotal.
type Discount struct {
	CouponID   string
	PercentOff decimal.Decimal
	Duration   Duration
}

// Validate checks the invariants enforced at discount creation time.
// The pricing engine relies on these holding and does not re-check them.
func (d *Discount) Validate() error {
	if d.CouponID == "" {
		return errors.New("coupon ID is required")
	}
	if d.PercentOff.IsNegative() || d.PercentOff.GreaterThan(hundred) {
		return ErrPercentOutOfRange
	}
	switch d.Duration {
	case DurationOnce, DurationRepeating, DurationForever:
		return nil
	default:
		return errors.Errorf("unsupported discount duration: %q", d.Duration)
	}
}

// Tax is a percentage tax rate. An inclusive tax is already embedded in item
// prices and must not be added again on top of the subtotal.
type Tax struct {
	TaxID       string
	DisplayName string
	Percentage  decimal.Decimal
	Inclusive   bool
}

// Validate checks the invariants enforced at tax creation time.
func (t *Tax) Validate() error {
	if t.TaxID == "" {
		return errors.New("tax ID is required")
	}
	if t.DisplayName == "" {
		return errors.New("tax display name is required")
	}
	if t.Percentage.IsNegative() {
		return ErrNegativePercentage
	}
	return nil
}

// Repository provides lookup and creation of pricing policies.
type Repository interface {
	GetDiscount(ctx context.Context, couponID string) (*Discount, error)
	GetTax(ctx context.Context, taxID string) (*Tax, error)
	UpsertDiscount(ctx context.Context, d *Discount) error
	UpsertTax(ctx context.Context, t *Tax) error
}
