// Command price-ingest bulk-imports price and VAT rate history exported by an
// external price-management system. It scans a directory for gzip-compressed
// CSV files and appends their records to the pricing and vat history tables.
//
// File naming decides the target table: pricing-*.csv.gz rows go to pricing,
// vat-*.csv.gz rows go to vat. Each row is "item_id,value,start_date" with an
// RFC 3339 start date. Re-running the import is safe: rows whose
// (item_id, start_date) already exist are skipped.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/purchase-cart/internal/storage/postgres"
)

const (
	batchSize     = 500
	maxConcurrent = 4
	progressEvery = 100_000
)

const (
	insertPriceSQL = `INSERT INTO pricing (item_id, price, start_date) VALUES ($1, $2, $3)
	ON CONFLICT (item_id, start_date) DO NOTHING`

	insertVatSQL = `INSERT INTO vat (item_id, rate, start_date) VALUES ($1, $2, $3)
	ON CONFLICT (item_id, start_date) DO NOTHING`
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing pricing-*.csv.gz and vat-*.csv.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "scan data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files found in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, file := range files {
		g.Go(func() error {
			sql, ok := tableSQL(file)
			if !ok {
				slog.Warn("skipping file with unknown prefix", slog.String("file", file))
				return nil
			}
			rows, err := ingestFile(ctx, pool, file, sql)
			if err != nil {
				return errors.Wrapf(err, "ingest %s", file)
			}
			slog.Info("file ingested", slog.String("file", file), slog.Int64("rows", rows))
			return nil
		})
	}

	return g.Wait()
}

// tableSQL maps a file name to the insert statement for its target table.
func tableSQL(file string) (string, bool) {
	switch base := filepath.Base(file); {
	case strings.HasPrefix(base, "pricing-"):
		return insertPriceSQL, true
	case strings.HasPrefix(base, "vat-"):
		return insertVatSQL, true
	default:
		return "", false
	}
}

func ingestFile(ctx context.Context, pool *pgxpool.Pool, file, sql string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = 3
	r.ReuseRecord = true

	var (
		batch pgx.Batch
		total int64
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, errors.Wrap(err, "read csv")
		}

		itemID, value, startDate, err := parseRecord(rec)
		if err != nil {
			return total, errors.Wrapf(err, "row %d", total+1)
		}
		batch.Queue(sql, itemID, value, startDate)

		if batch.Len() >= batchSize {
			if err := pool.SendBatch(ctx, &batch).Close(); err != nil {
				return total, errors.Wrap(err, "send batch")
			}
			total += int64(batchSize)
			batch = pgx.Batch{}
			if total%progressEvery == 0 {
				slog.Info("progress", slog.String("file", filepath.Base(file)), slog.Int64("rows", total))
			}
		}
	}

	if batch.Len() > 0 {
		remaining := int64(batch.Len())
		if err := pool.SendBatch(ctx, &batch).Close(); err != nil {
			return total, errors.Wrap(err, "send final batch")
		}
		total += remaining
	}

	return total, nil
}

func parseRecord(rec []string) (int64, decimal.Decimal, time.Time, error) {
	itemID, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return 0, decimal.Decimal{}, time.Time{}, errors.Wrap(err, "item id")
	}
	value, err := decimal.NewFromString(rec[1])
	if err != nil {
		return 0, decimal.Decimal{}, time.Time{}, errors.Wrap(err, "value")
	}
	startDate, err := time.Parse(time.RFC3339, rec[2])
	if err != nil {
		return 0, decimal.Decimal{}, time.Time{}, errors.Wrap(err, "start date")
	}
	return itemID, value, startDate, nil
}
