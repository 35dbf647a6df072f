package model

import (
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
)

type IntakeSession struct {
	ID            string
	WalletAddress string
	QuestionIndex int
	Status        enums.IntakeStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type IntakeMessage struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}
