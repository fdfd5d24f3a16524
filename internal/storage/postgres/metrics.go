package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/metric"
)

// RegisterPoolMetrics exports pgxpool connection statistics through the given
// meter provider. Gauges are observed lazily on each metrics collection.
func RegisterPoolMetrics(pool *pgxpool.Pool, provider metric.MeterProvider) error {
	meter := provider.Meter("purchase-cart/storage/postgres")

	acquired, err := meter.Int64ObservableGauge("db.pool.acquired_connections",
		metric.WithDescription("Connections currently acquired from the pool"))
	if err != nil {
		return errors.Wrap(err, "acquired gauge")
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle_connections",
		metric.WithDescription("Idle connections in the pool"))
	if err != nil {
		return errors.Wrap(err, "idle gauge")
	}
	total, err := meter.Int64ObservableGauge("db.pool.total_connections",
		metric.WithDescription("Total connections held by the pool"))
	if err != nil {
		return errors.Wrap(err, "total gauge")
	}
	maxConns, err := meter.Int64ObservableGauge("db.pool.max_connections",
		metric.WithDescription("Maximum connections the pool may open"))
	if err != nil {
		return errors.Wrap(err, "max gauge")
	}
	acquireCount, err := meter.Int64ObservableCounter("db.pool.acquire_count",
		metric.WithDescription("Cumulative connection acquires"))
	if err != nil {
		return errors.Wrap(err, "acquire counter")
	}
	emptyAcquires, err := meter.Int64ObservableCounter("db.pool.empty_acquire_count",
		metric.WithDescription("Cumulative acquires that waited for a free connection"))
	if err != nil {
		return errors.Wrap(err, "empty acquire counter")
	}

	_, err = meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		stat := pool.Stat()
		obs.ObserveInt64(acquired, int64(stat.AcquiredConns()))
		obs.ObserveInt64(idle, int64(stat.IdleConns()))
		obs.ObserveInt64(total, int64(stat.TotalConns()))
		obs.ObserveInt64(maxConns, int64(stat.MaxConns()))
		obs.ObserveInt64(acquireCount, stat.AcquireCount())
		obs.ObserveInt64(emptyAcquires, stat.EmptyAcquireCount())
		return nil
	}, acquired, idle, total, maxConns, acquireCount, emptyAcquires)
	if err != nil {
		return errors.Wrap(err, "register callback")
	}

	return nil
}
