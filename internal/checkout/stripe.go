package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/order"
)

var _ order.SessionCreator = (*StripeClient)(nil)

// StripeClient opens Stripe Checkout sessions. Each currency settles into a
// separate Stripe account, so the client holds one API client per currency
// and picks it by the order's resolved currency.
type StripeClient struct {
	apis map[catalog.Currency]*stripeclient.API
}

// NewStripeClient creates a StripeClient from per-currency secret keys.
// Currencies without a key are rejected at session-creation time.
func NewStripeClient(keys map[catalog.Currency]string) *StripeClient {
	apis := make(map[catalog.Currency]*stripeclient.API, len(keys))
	for currency, key := range keys {
		api := &stripeclient.API{}
		api.Init(key, nil)
		apis[currency] = api
	}
	return &StripeClient{apis: apis}
}

// CreateSession opens a payment-mode Checkout session for the request's
// lines and returns the Stripe session ID. Discounts and taxes are passed
// as processor-level parameters; Stripe recomputes them on its side.
func (c *StripeClient) CreateSession(ctx context.Context, req order.SessionRequest) (string, error) {
	api, ok := c.apis[req.Currency]
	if !ok {
		return "", &SessionError{Err: errors.Errorf("no payment account for currency %q", req.Currency)}
	}

	items := Project(req.Lines)
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(items))
	for i, li := range items {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(li.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(int64(li.Quantity)),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if req.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(req.CouponID)},
		}
	}
	if req.AutomaticTax {
		params.AutomaticTax = &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		}
	}

	session, err := api.CheckoutSessions.New(params)
	if err != nil {
		return "", &SessionError{Err: err}
	}
	return session.ID, nil
}
