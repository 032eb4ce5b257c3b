// Command seed-db loads the demo catalog, pricing policies, and an API key
// into the database. It is idempotent for policies (upsert) and best-effort
// for catalog rows that already exist.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ordercart/internal/api"
	"ordercart/internal/domain/catalog"
	"ordercart/internal/domain/policy"
	"ordercart/internal/repository"
)

type seedFile struct {
	Users []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"users"`
	Items []struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Currency    string          `json:"currency"`
		OwnerID     string          `json:"owner_id"`
	} `json:"items"`
	Discounts []struct {
		CouponID   string          `json:"coupon_id"`
		PercentOff decimal.Decimal `json:"percent_off"`
		Duration   string          `json:"duration"`
	} `json:"discounts"`
	Taxes []struct {
		TaxID       string          `json:"tax_id"`
		DisplayName string          `json:"display_name"`
		Percentage  decimal.Decimal `json:"percentage"`
		Inclusive   bool            `json:"inclusive"`
	} `json:"taxes"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyUser   string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or CART_SEED_API_KEY env)")
	flag.StringVar(&apiKeyUser, "api-key-user", "u-demo", "user ID the seeded API key belongs to")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or CART_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("CART_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or CART_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("CART_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyUser, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, apiKeyUser, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	if err := seedUsers(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedItems(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed items")
	}
	if err := seedPolicies(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed policies")
	}
	if err := seedAPIKey(ctx, pool, apiKey, apiKeyUser, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	for _, u := range seed.Users {
		_, err := pool.Exec(ctx,
			`INSERT INTO users (id, name) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			u.ID, u.Name,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}
	}
	slog.Info("users seeded", slog.Int("count", len(seed.Users)))
	return nil
}

func seedItems(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	repo := repository.NewCatalogRepository(pool)
	created := 0
	for _, raw := range seed.Items {
		item := catalog.Item{
			ID:          raw.ID,
			Name:        raw.Name,
			Description: raw.Description,
			Price:       raw.Price,
			Currency:    catalog.Currency(raw.Currency),
			OwnerID:     raw.OwnerID,
		}
		if err := item.Validate(); err != nil {
			return errors.Wrapf(err, "validate item %s", raw.ID)
		}
		if err := repo.Create(ctx, &item); err != nil {
			// Existing rows keep their current definition.
			slog.Warn("item not inserted", slog.String("id", raw.ID), slog.String("error", err.Error()))
			continue
		}
		created++
	}
	slog.Info("items seeded", slog.Int("created", created))
	return nil
}

func seedPolicies(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	repo := repository.NewPolicyRepository(pool)
	for _, d := range seed.Discounts {
		err := repo.UpsertDiscount(ctx, &policy.Discount{
			CouponID:   d.CouponID,
			PercentOff: d.PercentOff,
			Duration:   policy.Duration(d.Duration),
		})
		if err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.CouponID)
		}
	}
	for _, t := range seed.Taxes {
		err := repo.UpsertTax(ctx, &policy.Tax{
			TaxID:       t.TaxID,
			DisplayName: t.DisplayName,
			Percentage:  t.Percentage,
			Inclusive:   t.Inclusive,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert tax %s", t.TaxID)
		}
	}
	slog.Info("policies seeded",
		slog.Int("discounts", len(seed.Discounts)),
		slog.Int("taxes", len(seed.Taxes)),
	)
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, key, userID, pepper string) error {
	hash := api.HashAPIKey(key, []byte(pepper))
	_, err := pool.Exec(ctx,
		`INSERT INTO api_keys (key_hash, user_id, name) VALUES ($1, $2, $3)
		 ON CONFLICT (key_hash) DO NOTHING`,
		hash, userID, "seeded",
	)
	if err != nil {
		return errors.Wrap(err, "insert api key")
	}
	slog.Info("api key seeded", slog.String("user", userID))
	return nil
}
