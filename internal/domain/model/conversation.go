package model

import "time"

// Conversation gates private chat behind mutual acceptance of an
// approved proposal. Accepted flags are tri-state: nil = pending.
type Conversation struct {
	ID            int64
	ProposalID    int64
	UserA         string
	UserB         string
	UserAAccepted *bool
	UserBAccepted *bool
	UnlockedAt    *time.Time
	CreatedAt     time.Time
}

type ChatMessage struct {
	ID             int64
	ConversationID int64
	Sender         string
	Message        string
	CreatedAt      time.Time
}
