package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

var ErrIntakeSessionNotFound = errors.New("intake session not found")

type IntakeRepo struct {
	pool *pgxpool.Pool
}

func NewIntakeRepo(pool *pgxpool.Pool) *IntakeRepo {
	return &IntakeRepo{pool: pool}
}

func (r *IntakeRepo) CreateSession(ctx context.Context, s model.IntakeSession) error {
	if s.ID == "" || s.WalletAddress == "" {
		return fmt.Errorf("invalid intake session payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO intake_sessions (id, wallet_address, question_index, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
`, s.ID, s.WalletAddress, s.QuestionIndex, s.Status)
	if err != nil {
		return fmt.Errorf("insert intake session: %w", err)
	}

	return nil
}

func (r *IntakeRepo) GetSession(ctx context.Context, id string) (model.IntakeSession, error) {
	if id == "" {
		return model.IntakeSession{}, fmt.Errorf("empty session id")
	}
	if r.pool == nil {
		return model.IntakeSession{}, fmt.Errorf("postgres pool is nil")
	}

	var s model.IntakeSession
	err := r.pool.QueryRow(ctx, `
SELECT id, wallet_address, question_index, status, created_at, updated_at
FROM intake_sessions
WHERE id = $1
`, id).Scan(&s.ID, &s.WalletAddress, &s.QuestionIndex, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.IntakeSession{}, ErrIntakeSessionNotFound
	}
	if err != nil {
		return model.IntakeSession{}, fmt.Errorf("get intake session: %w", err)
	}

	return s, nil
}

func (r *IntakeRepo) AdvanceSession(ctx context.Context, id string, questionIndex int, status enums.IntakeStatus, at time.Time) error {
	if id == "" {
		return fmt.Errorf("empty session id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE intake_sessions
SET question_index = $2, status = $3, updated_at = $4
WHERE id = $1
`, id, questionIndex, status, at.UTC())
	if err != nil {
		return fmt.Errorf("advance intake session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIntakeSessionNotFound
	}

	return nil
}

func (r *IntakeRepo) AppendMessage(ctx context.Context, msg model.IntakeMessage) error {
	if msg.SessionID == "" || msg.Role == "" {
		return fmt.Errorf("invalid intake message payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO intake_messages (session_id, role, content, created_at)
VALUES ($1, $2, $3, NOW())
`, msg.SessionID, msg.Role, msg.Content)
	if err != nil {
		return fmt.Errorf("insert intake message: %w", err)
	}

	return nil
}

func (r *IntakeRepo) ListMessages(ctx context.Context, sessionID string) ([]model.IntakeMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("empty session id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, session_id, role, content, created_at
FROM intake_messages
WHERE session_id = $1
ORDER BY created_at ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list intake messages: %w", err)
	}
	defer rows.Close()

	var items []model.IntakeMessage
	for rows.Next() {
		var m model.IntakeMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan intake message: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate intake messages: %w", rows.Err())
	}

	return items, nil
}
