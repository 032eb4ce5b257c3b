// Package checkout translates priced order lines into the flat minor-unit
// form the payment processor expects and opens payment sessions with Stripe.
package checkout

import (
	"fmt"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/order"
)

// LineItem is one entry of the payment-adapter line-item list. UnitAmount is
// in minor units (cents for the two-decimal currencies this service supports).
type LineItem struct {
	Currency   catalog.Currency
	Name       string
	UnitAmount int64
	Quantity   int
}

// Project flattens priced order lines into adapter line items, converting
// each unit price into minor units.
func Project(lines []order.LineItem) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = LineItem{
			Currency:   l.Currency,
			Name:       l.Name,
			UnitAmount: l.UnitPrice.Shift(2).IntPart(),
			Quantity:   l.Quantity,
		}
	}
	return out
}

// SessionError wraps a failure reported by the payment processor. It is an
// external-service error: the order itself remains valid and the user may
// re-initiate checkout.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("checkout session: %v", e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
