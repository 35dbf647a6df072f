package model

import (
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
)

type Proposal struct {
	ID                 int64
	UserA              string
	UserB              string
	PairHash           string
	Score              float64
	Reasons            []string
	Status             enums.ProposalStatus
	YesVotes           int
	NoVotes            int
	TotalVotesCast     int
	ApprovalThreshold  int
	VotingStartedAt    time.Time
	VotingExpiresAt    time.Time
	FinalizedAt        *time.Time
	SnapshotProposalID *string
}
