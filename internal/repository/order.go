package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, owner_id, currency, total_price, coupon_id, tax_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrderSQL = `SELECT id, owner_id, currency, total_price, coupon_id, tax_id, created_at
		FROM orders WHERE id = $1 AND owner_id = $2`

	getOrderLinesSQL = `SELECT item_id, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY item_id`

	updateOrderSQL = `UPDATE orders
		SET currency = $2, total_price = $3, coupon_id = $4, tax_id = $5
		WHERE id = $1`

	deleteOrderLinesSQL = `DELETE FROM order_lines WHERE order_id = $1`

	insertOrderLineSQL = `INSERT INTO order_lines (order_id, item_id, quantity)
		VALUES ($1, $2, $3)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Save rewrites the order row and its full line set inside one transaction,
// so concurrent readers never see mutated lines next to a stale total.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new (typically empty) order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.OwnerID, string(o.Currency), o.Total,
		nullable(o.CouponID), nullable(o.TaxID),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// Get loads an order with its lines. Returns order.ErrNotFound when the
// order does not exist or belongs to another user.
func (r *OrderRepository) Get(ctx context.Context, ownerID, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	lineRows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order lines for %q: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(lineRows, scanLine)
	if err != nil {
		return nil, fmt.Errorf("getting order lines for %q: %w", id, err)
	}

	return &o, nil
}

// Save atomically writes the order's derived fields and replaces its line
// set. Either everything lands or nothing does.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("saving order %q: %w", o.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, updateOrderSQL,
		o.ID, string(o.Currency), o.Total,
		nullable(o.CouponID), nullable(o.TaxID),
	)
	if err != nil {
		return fmt.Errorf("saving order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if _, err := tx.Exec(ctx, deleteOrderLinesSQL, o.ID); err != nil {
		return fmt.Errorf("clearing lines for order %q: %w", o.ID, err)
	}
	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderLineSQL, o.ID, l.ItemID, l.Quantity); err != nil {
			return fmt.Errorf("writing line %q for order %q: %w", l.ItemID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("saving order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		currency string
		total    decimal.Decimal
		couponID *string
		taxID    *string
	)
	err := row.Scan(&o.ID, &o.OwnerID, &currency, &total, &couponID, &taxID, &o.CreatedAt)
	o.Currency = catalog.Currency(currency)
	o.Total = total
	if couponID != nil {
		o.CouponID = *couponID
	}
	if taxID != nil {
		o.TaxID = *taxID
	}
	return o, err
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ItemID, &l.Quantity)
	return l, err
}

// nullable maps the aggregate's empty-string policy references to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
