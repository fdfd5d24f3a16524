// Command seed-db applies the schema and loads a sample product catalog with
// its price and VAT history from a JSON file. Reseeding is idempotent: items
// are upserted and history rows are only inserted when absent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/purchase-cart/internal/storage/postgres"
)

type catalogItem struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Prices      []priceJSON `json:"prices"`
	VatRates    []vatJSON   `json:"vat_rates"`
}

type priceJSON struct {
	Price     decimal.Decimal `json:"price"`
	StartDate time.Time       `json:"start_date"`
}

type vatJSON struct {
	Rate      decimal.Decimal `json:"rate"`
	StartDate time.Time       `json:"start_date"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var items []catalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, item := range items {
		if _, err := pool.Exec(ctx,
			`INSERT INTO items (id, description) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description`,
			item.ID, item.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert item %d", item.ID)
		}

		for _, p := range item.Prices {
			if _, err := pool.Exec(ctx,
				`INSERT INTO pricing (item_id, price, start_date) VALUES ($1, $2, $3)
				ON CONFLICT (item_id, start_date) DO NOTHING`,
				item.ID, p.Price, p.StartDate,
			); err != nil {
				return errors.Wrapf(err, "insert price for item %d", item.ID)
			}
		}

		for _, v := range item.VatRates {
			if _, err := pool.Exec(ctx,
				`INSERT INTO vat (item_id, rate, start_date) VALUES ($1, $2, $3)
				ON CONFLICT (item_id, start_date) DO NOTHING`,
				item.ID, v.Rate, v.StartDate,
			); err != nil {
				return errors.Wrapf(err, "insert vat rate for item %d", item.ID)
			}
		}

		slog.Info("seeded item",
			slog.Int64("id", item.ID),
			slog.String("description", item.Description),
			slog.Int("prices", len(item.Prices)),
			slog.Int("vat_rates", len(item.VatRates)),
		)
	}

	// Explicit IDs bypass the sequence; realign it so later inserts don't collide.
	if _, err := pool.Exec(ctx,
		`SELECT setval('items_id_seq', (SELECT COALESCE(MAX(id), 1) FROM items))`,
	); err != nil {
		return errors.Wrap(err, "realign items sequence")
	}

	return nil
}
