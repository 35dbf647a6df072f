package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

type MetricsRepo struct {
	pool *pgxpool.Pool
}

func NewMetricsRepo(pool *pgxpool.Pool) *MetricsRepo {
	return &MetricsRepo{pool: pool}
}

func (r *MetricsRepo) Record(ctx context.Context, metrics []model.SystemMetric, at time.Time) error {
	if len(metrics) == 0 {
		return nil
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	for _, m := range metrics {
		if m.Name == "" {
			continue
		}
		_, err := r.pool.Exec(ctx, `
INSERT INTO system_metrics (metric_name, metric_value, recorded_at)
VALUES ($1, $2, $3)
`, m.Name, m.Value, at.UTC())
		if err != nil {
			return fmt.Errorf("insert system metric: %w", err)
		}
	}

	return nil
}

// Latest returns the most recent value per metric name.
func (r *MetricsRepo) Latest(ctx context.Context) ([]model.SystemMetric, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT ON (metric_name) metric_name, metric_value, recorded_at
FROM system_metrics
ORDER BY metric_name, recorded_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list latest metrics: %w", err)
	}
	defer rows.Close()

	var items []model.SystemMetric
	for rows.Next() {
		var m model.SystemMetric
		if err := rows.Scan(&m.Name, &m.Value, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan system metric: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate system metrics: %w", rows.Err())
	}

	return items, nil
}
