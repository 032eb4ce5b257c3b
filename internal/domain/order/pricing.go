package order

import (
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/policy"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LineItem pairs an ordered quantity with the current catalog price of its
// item. It is the pricing engine input and the source for the checkout
// line-item projection.
type LineItem struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Currency  catalog.Currency
	Quantity  int
}

// Quote is the pricing engine output: the order's resolved currency and
// total. An empty line set yields a zero total with no currency.
type Quote struct {
	Currency catalog.Currency
	Total    decimal.Decimal
}

// Price derives an order's currency and total from its priced lines and
// optional policy set. It is a pure function; callers persist the result.
//
// The total is subtotal, minus the discount, plus exclusive tax — in that
// order: the discount reduces the subtotal and tax applies to the discounted
// amount. An inclusive tax is already embedded in item prices and adds
// nothing. The result is rounded to 2 decimal places.
//
// Policy percentages are validated at entity creation (policy.Validate);
// out-of-range values here are a data-integrity bug, not an input error.
func Price(lines []LineItem, d *policy.Discount, t *policy.Tax) (Quote, error) {
	if len(lines) == 0 {
		return Quote{Total: decimal.Zero}, nil
	}

	currency := lines[0].Currency
	for _, l := range lines[1:] {
		if l.Currency != currency {
			return Quote{}, ErrMixedCurrencies
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(l.UnitPrice.Mul(qty))
	}

	if d != nil {
		subtotal = subtotal.Mul(one.Sub(d.PercentOff.Div(hundred)))
	}
	if t != nil && !t.Inclusive {
		subtotal = subtotal.Mul(one.Add(t.Percentage.Div(hundred)))
	}

	return Quote{
		Currency: currency,
		Total:    subtotal.Round(2),
	}, nil
}
