package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ordercart/internal/domain/catalog"
)

const (
	createItemSQL = `INSERT INTO items (id, name, description, price, currency, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listItemsSQL = `SELECT id, name, description, price, currency, owner_id
		FROM items WHERE owner_id = $1 ORDER BY id`

	getItemByIDSQL = `SELECT id, name, description, price, currency, owner_id
		FROM items WHERE id = $1 AND owner_id = $2`

	getItemsByIDsSQL = `SELECT id, name, description, price, currency, owner_id
		FROM items WHERE id = ANY($1) AND owner_id = $2`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// All reads are scoped to the owning user.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Create persists a new catalog item.
func (r *CatalogRepository) Create(ctx context.Context, item *catalog.Item) error {
	_, err := r.pool.Exec(ctx, createItemSQL,
		item.ID, item.Name, item.Description, item.Price, string(item.Currency), item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("creating item %q: %w", item.ID, err)
	}
	return nil
}

// ListByOwner returns every item owned by the given user, ordered by ID.
func (r *CatalogRepository) ListByOwner(ctx context.Context, ownerID string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByID returns a single item owned by the given user.
func (r *CatalogRepository) GetByID(ctx context.Context, ownerID, id string) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}
	return &item, nil
}

// GetByIDs returns the owner's items matching any of the given IDs.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ownerID string, ids []string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemsByIDsSQL, ids, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var (
		item     catalog.Item
		price    decimal.Decimal
		currency string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &currency, &item.OwnerID)
	item.Price = price
	item.Currency = catalog.Currency(currency)
	return item, err
}
