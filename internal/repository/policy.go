package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/policy"
)

const (
	getDiscountSQL = `SELECT coupon_id, percent_off, duration
		FROM discounts WHERE coupon_id = $1`

	upsertDiscountSQL = `INSERT INTO discounts (coupon_id, percent_off, duration)
		VALUES ($1, $2, $3)
		ON CONFLICT (coupon_id) DO UPDATE
		SET percent_off = EXCLUDED.percent_off, duration = EXCLUDED.duration`

	getTaxSQL = `SELECT tax_id, display_name, percentage, inclusive
		FROM taxes WHERE tax_id = $1`

	upsertTaxSQL = `INSERT INTO taxes (tax_id, display_name, percentage, inclusive)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tax_id) DO UPDATE
		SET display_name = EXCLUDED.display_name, percentage = EXCLUDED.percentage,
		    inclusive = EXCLUDED.inclusive`
)

var _ policy.Repository = (*PolicyRepository)(nil)

// PolicyRepository implements policy.Repository backed by PostgreSQL.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository returns a PolicyRepository that uses the given pool.
func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// GetDiscount looks up a discount by coupon ID.
// Returns policy.ErrDiscountNotFound when no such discount exists.
func (r *PolicyRepository) GetDiscount(ctx context.Context, couponID string) (*policy.Discount, error) {
	rows, err := r.pool.Query(ctx, getDiscountSQL, couponID)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", couponID, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, policy.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("finding discount %q: %w", couponID, err)
	}
	return &d, nil
}

// GetTax looks up a tax policy by tax ID.
// Returns policy.ErrTaxNotFound when no such tax exists.
func (r *PolicyRepository) GetTax(ctx context.Context, taxID string) (*policy.Tax, error) {
	rows, err := r.pool.Query(ctx, getTaxSQL, taxID)
	if err != nil {
		return nil, fmt.Errorf("finding tax %q: %w", taxID, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, policy.ErrTaxNotFound
		}
		return nil, fmt.Errorf("finding tax %q: %w", taxID, err)
	}
	return &t, nil
}

// UpsertDiscount validates and writes a discount, replacing any existing
// definition for the same coupon ID.
func (r *PolicyRepository) UpsertDiscount(ctx context.Context, d *policy.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, upsertDiscountSQL, d.CouponID, d.PercentOff, string(d.Duration))
	if err != nil {
		return fmt.Errorf("upserting discount %q: %w", d.CouponID, err)
	}
	return nil
}

// UpsertTax validates and writes a tax policy, replacing any existing
// definition for the same tax ID.
func (r *PolicyRepository) UpsertTax(ctx context.Context, t *policy.Tax) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, upsertTaxSQL, t.TaxID, t.DisplayName, t.Percentage, t.Inclusive)
	if err != nil {
		return fmt.Errorf("upserting tax %q: %w", t.TaxID, err)
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (policy.Discount, error) {
	var (
		d          policy.Discount
		percentOff decimal.Decimal
		duration   string
	)
	err := row.Scan(&d.CouponID, &percentOff, &duration)
	d.PercentOff = percentOff
	d.Duration = policy.Duration(duration)
	return d, err
}

func scanTax(row pgx.CollectableRow) (policy.Tax, error) {
	var (
		t          policy.Tax
		percentage decimal.Decimal
	)
	err := row.Scan(&t.TaxID, &t.DisplayName, &percentage, &t.Inclusive)
	t.Percentage = percentage
	return t, err
}
