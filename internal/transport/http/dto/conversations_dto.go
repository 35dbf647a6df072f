package dto

import "time"

type ConversationResponse struct {
	ID            int64      `json:"id"`
	ProposalID    int64      `json:"proposal_id"`
	UserA         string     `json:"user_a"`
	UserB         string     `json:"user_b"`
	UserAAccepted *bool      `json:"user_a_accepted"`
	UserBAccepted *bool      `json:"user_b_accepted"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ConversationsListResponse struct {
	Items []ConversationResponse `json:"items"`
}

type ConversationRespondRequest struct {
	Accept *bool `json:"accept"`
}

type ChatMessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatMessagesResponse struct {
	Items []ChatMessageResponse `json:"items"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}
