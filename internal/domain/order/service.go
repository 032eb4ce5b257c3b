package order

import (
	"context"

	"github.com/go-faster/errors"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/policy"
)

// SessionRequest carries everything the payment adapter needs to open a
// checkout session. The adapter projects Lines into its own wire format and
// applies its own discount/tax computation remotely; CouponID and
// AutomaticTax only tell it which policies are active.
type SessionRequest struct {
	Currency     catalog.Currency
	Lines        []LineItem
	SuccessURL   string
	CancelURL    string
	CouponID     string
	AutomaticTax bool
}

// SessionCreator opens a payment session with an external processor and
// returns its opaque session identifier.
type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (string, error)
}

// Service implements order mutation, repricing, and checkout initiation.
// Every mutation reprices the aggregate before persisting, and persists the
// lines together with the derived currency and total as one atomic write.
type Service struct {
	orders   Repository
	items    catalog.Repository
	policies policy.Repository
	sessions SessionCreator
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	items catalog.Repository,
	policies policy.Repository,
	sessions SessionCreator,
) *Service {
	return &Service{
		orders:   orders,
		items:    items,
		policies: policies,
		sessions: sessions,
	}
}

// Create starts a new empty order for the given user.
func (s *Service) Create(ctx context.Context, ownerID string) (*Order, error) {
	o := New(ownerID)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Detail returns an order together with its priced lines. It never mutates
// persisted state: the stored total is whatever the last mutation computed.
func (s *Service) Detail(ctx context.Context, ownerID, orderID string) (*Order, []LineItem, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.priceLines(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	return o, lines, nil
}

// AddItem merges quantity into the order's line for the item (creating the
// line if absent), reprices, and persists. A quantity below 1 fails with
// InvalidQuantityError; a resulting mixed-currency line set fails with
// ErrMixedCurrencies before anything is written.
func (s *Service) AddItem(ctx context.Context, ownerID, orderID, itemID string, quantity int) (*Order, error) {
	if quantity < 1 {
		return nil, &InvalidQuantityError{ItemID: itemID}
	}

	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	o.AddLine(itemID, quantity)

	return s.repriceAndSave(ctx, o)
}

// RemoveItem deletes the order's line for the item, reprices, and persists.
// Removing an item that is not in the order is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, ownerID, orderID, itemID string) (*Order, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	if !o.RemoveLine(itemID) {
		return o, nil
	}

	return s.repriceAndSave(ctx, o)
}

// ApplyDiscount attaches a discount to the order, reprices, and persists.
func (s *Service) ApplyDiscount(ctx context.Context, ownerID, orderID, couponID string) (*Order, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.policies.GetDiscount(ctx, couponID); err != nil {
		return nil, err
	}
	o.CouponID = couponID

	return s.repriceAndSave(ctx, o)
}

// ClearDiscount detaches the order's discount, reprices, and persists.
func (s *Service) ClearDiscount(ctx context.Context, ownerID, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	o.CouponID = ""

	return s.repriceAndSave(ctx, o)
}

// ApplyTax attaches a tax policy to the order, reprices, and persists.
func (s *Service) ApplyTax(ctx context.Context, ownerID, orderID, taxID string) (*Order, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.policies.GetTax(ctx, taxID); err != nil {
		return nil, err
	}
	o.TaxID = taxID

	return s.repriceAndSave(ctx, o)
}

// ClearTax detaches the order's tax policy, reprices, and persists.
func (s *Service) ClearTax(ctx context.Context, ownerID, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	o.TaxID = ""

	return s.repriceAndSave(ctx, o)
}

// Checkout reprices the order, persists the fresh total, and opens a payment
// session for its lines. An order with no lines fails with ErrEmptyOrder.
func (s *Service) Checkout(ctx context.Context, ownerID, orderID, successURL, cancelURL string) (string, error) {
	o, err := s.orders.Get(ctx, ownerID, orderID)
	if err != nil {
		return "", err
	}
	if len(o.Lines) == 0 {
		return "", ErrEmptyOrder
	}

	lines, err := s.reprice(ctx, o)
	if err != nil {
		return "", err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return "", errors.Wrap(err, "save order")
	}

	sessionID, err := s.sessions.CreateSession(ctx, SessionRequest{
		Currency:     o.Currency,
		Lines:        lines,
		SuccessURL:   successURL,
		CancelURL:    cancelURL,
		CouponID:     o.CouponID,
		AutomaticTax: o.TaxID != "",
	})
	if err != nil {
		return "", errors.Wrap(err, "create checkout session")
	}
	return sessionID, nil
}

// BuyItem opens a payment session for a single item with quantity 1,
// bypassing order assembly.
func (s *Service) BuyItem(ctx context.Context, ownerID, itemID, successURL, cancelURL string) (string, error) {
	item, err := s.items.GetByID(ctx, ownerID, itemID)
	if err != nil {
		return "", err
	}

	sessionID, err := s.sessions.CreateSession(ctx, SessionRequest{
		Currency: item.Currency,
		Lines: []LineItem{{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Currency:  item.Currency,
			Quantity:  1,
		}},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return "", errors.Wrap(err, "create checkout session")
	}
	return sessionID, nil
}

// repriceAndSave reprices the mutated aggregate and persists it. A pricing
// failure returns before Save, leaving the stored order untouched.
func (s *Service) repriceAndSave(ctx context.Context, o *Order) (*Order, error) {
	if _, err := s.reprice(ctx, o); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	return o, nil
}

// reprice resolves priced lines and attached policies, runs the pricing
// engine, and writes the derived currency and total onto the aggregate.
func (s *Service) reprice(ctx context.Context, o *Order) ([]LineItem, error) {
	lines, err := s.priceLines(ctx, o)
	if err != nil {
		return nil, err
	}

	var d *policy.Discount
	if o.CouponID != "" {
		if d, err = s.policies.GetDiscount(ctx, o.CouponID); err != nil {
			return nil, err
		}
	}
	var t *policy.Tax
	if o.TaxID != "" {
		if t, err = s.policies.GetTax(ctx, o.TaxID); err != nil {
			return nil, err
		}
	}

	quote, err := Price(lines, d, t)
	if err != nil {
		return nil, err
	}

	o.Currency = quote.Currency
	o.Total = quote.Total
	return lines, nil
}

// priceLines fetches the referenced items in one batch and joins them with
// the order's quantities. Items read each price exactly once per mutation.
func (s *Service) priceLines(ctx context.Context, o *Order) ([]LineItem, error) {
	if len(o.Lines) == 0 {
		return nil, nil
	}

	ids := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		ids[i] = l.ItemID
	}

	items, err := s.items.GetByIDs(ctx, o.OwnerID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get items")
	}

	byID := make(map[string]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	lines := make([]LineItem, len(o.Lines))
	for i, l := range o.Lines {
		it, ok := byID[l.ItemID]
		if !ok {
			return nil, errors.Wrapf(catalog.ErrNotFound, "item %s", l.ItemID)
		}
		lines[i] = LineItem{
			ItemID:    it.ID,
			Name:      it.Name,
			UnitPrice: it.Price,
			Currency:  it.Currency,
			Quantity:  l.Quantity,
		}
	}
	return lines, nil
}
