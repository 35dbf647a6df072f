package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationLocked   = errors.New("conversation is not unlocked")
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

const conversationColumns = `
id, proposal_id, user_a_address, user_b_address,
user_a_accepted, user_b_accepted, unlocked_at, created_at
`

func scanConversation(row pgx.Row) (model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(
		&c.ID,
		&c.ProposalID,
		&c.UserA,
		&c.UserB,
		&c.UserAAccepted,
		&c.UserBAccepted,
		&c.UnlockedAt,
		&c.CreatedAt,
	)
	return c, err
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (model.Conversation, error) {
	if r.pool == nil {
		return model.Conversation{}, fmt.Errorf("postgres pool is nil")
	}

	c, err := scanConversation(r.pool.QueryRow(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id = $1
`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return c, nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, address string) ([]model.Conversation, error) {
	if address == "" {
		return nil, fmt.Errorf("empty user address")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE user_a_address = $1 OR user_b_address = $1
ORDER BY created_at DESC
`, address)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var items []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}

	return items, nil
}

// SetAccepted records one side's decision and unlocks the conversation
// once both sides have accepted. The whole step runs in one
// transaction so two simultaneous accepts cannot miss the unlock.
func (r *ConversationRepo) SetAccepted(ctx context.Context, id int64, address string, accepted bool, now time.Time) (model.Conversation, error) {
	if id <= 0 || address == "" {
		return model.Conversation{}, fmt.Errorf("invalid acceptance payload")
	}

	var out model.Conversation
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		c, err := scanConversation(tx.QueryRow(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id = $1
FOR UPDATE
`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConversationNotFound
		}
		if err != nil {
			return fmt.Errorf("lock conversation: %w", err)
		}

		column := ""
		switch address {
		case c.UserA:
			column = "user_a_accepted"
			c.UserAAccepted = &accepted
		case c.UserB:
			column = "user_b_accepted"
			c.UserBAccepted = &accepted
		default:
			return ErrConversationNotFound
		}

		unlock := accepted &&
			c.UserAAccepted != nil && *c.UserAAccepted &&
			c.UserBAccepted != nil && *c.UserBAccepted &&
			c.UnlockedAt == nil

		if unlock {
			at := now.UTC()
			c.UnlockedAt = &at
			_, err = tx.Exec(ctx, `
UPDATE conversations
SET `+column+` = $2, unlocked_at = $3
WHERE id = $1
`, id, accepted, at)
		} else {
			_, err = tx.Exec(ctx, `
UPDATE conversations
SET `+column+` = $2
WHERE id = $1
`, id, accepted)
		}
		if err != nil {
			return fmt.Errorf("update conversation acceptance: %w", err)
		}

		out = c
		return nil
	})
	if err != nil {
		return model.Conversation{}, err
	}

	return out, nil
}

func (r *ConversationRepo) InsertMessage(ctx context.Context, msg model.ChatMessage) (int64, error) {
	if msg.ConversationID <= 0 || msg.Sender == "" || msg.Message == "" {
		return 0, fmt.Errorf("invalid chat message payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO chat_messages (conversation_id, sender_address, message, created_at)
SELECT $1, $2, $3, NOW()
FROM conversations
WHERE id = $1 AND unlocked_at IS NOT NULL
RETURNING id
`, msg.ConversationID, msg.Sender, msg.Message).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConversationLocked
	}
	if err != nil {
		return 0, fmt.Errorf("insert chat message: %w", err)
	}

	return id, nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID int64, limit int) ([]model.ChatMessage, error) {
	if conversationID <= 0 {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, sender_address, message, created_at
FROM chat_messages
WHERE conversation_id = $1
ORDER BY created_at ASC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var items []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", rows.Err())
	}

	return items, nil
}
