package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

type QueueRepo struct {
	pool *pgxpool.Pool
}

func NewQueueRepo(pool *pgxpool.Pool) *QueueRepo {
	return &QueueRepo{pool: pool}
}

func (r *QueueRepo) CountUnconsumed(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM match_generation_queue
WHERE consumed_at IS NULL
`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unconsumed queue entries: %w", err)
	}

	return count, nil
}

// Insert adds one scored pair. A duplicate pair hash surfaces as a
// unique violation the caller is expected to skip.
func (r *QueueRepo) Insert(ctx context.Context, entry model.QueueEntry) (int64, error) {
	if entry.UserA == "" || entry.UserB == "" || entry.PairHash == "" {
		return 0, fmt.Errorf("invalid queue entry payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO match_generation_queue (
	user_a_address,
	user_b_address,
	pair_hash,
	ai_compatibility_score,
	compatibility_reasons,
	generated_at
) VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id
`, entry.UserA, entry.UserB, entry.PairHash, entry.Score, entry.Reasons).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert queue entry: %w", err)
	}

	return id, nil
}

// PullUnconsumed returns up to limit entries ordered by score
// descending, oldest first within equal scores.
func (r *QueueRepo) PullUnconsumed(ctx context.Context, limit int) ([]model.QueueEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_address, user_b_address, pair_hash, ai_compatibility_score, compatibility_reasons, generated_at, consumed_at
FROM match_generation_queue
WHERE consumed_at IS NULL
ORDER BY ai_compatibility_score DESC, generated_at ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("pull queue entries: %w", err)
	}
	defer rows.Close()

	var items []model.QueueEntry
	for rows.Next() {
		var entry model.QueueEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserA,
			&entry.UserB,
			&entry.PairHash,
			&entry.Score,
			&entry.Reasons,
			&entry.GeneratedAt,
			&entry.ConsumedAt,
		); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		items = append(items, entry)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate queue entries: %w", rows.Err())
	}

	return items, nil
}

func (r *QueueRepo) MarkConsumed(ctx context.Context, id int64, at time.Time) error {
	if id <= 0 {
		return fmt.Errorf("invalid queue entry id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
UPDATE match_generation_queue
SET consumed_at = $2
WHERE id = $1 AND consumed_at IS NULL
`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("mark queue entry consumed: %w", err)
	}

	return nil
}

// ListUnconsumedPairHashes feeds the generation de-duplication set.
func (r *QueueRepo) ListUnconsumedPairHashes(ctx context.Context) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT pair_hash
FROM match_generation_queue
WHERE consumed_at IS NULL
`)
	if err != nil {
		return nil, fmt.Errorf("list queue pair hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan queue pair hash: %w", err)
		}
		hashes = append(hashes, hash)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate queue pair hashes: %w", rows.Err())
	}

	return hashes, nil
}

func (r *QueueRepo) DeleteConsumedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM match_generation_queue
WHERE consumed_at IS NOT NULL AND consumed_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete consumed queue entries: %w", err)
	}

	return result.RowsAffected(), nil
}
