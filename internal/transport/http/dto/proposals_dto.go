package dto

import "time"

type ProposalResponse struct {
	ID                 int64      `json:"id"`
	PairHash           string     `json:"pair_hash"`
	Score              float64    `json:"score"`
	Reasons            []string   `json:"reasons"`
	Status             string     `json:"status"`
	YesVotes           int        `json:"yes_votes"`
	NoVotes            int        `json:"no_votes"`
	TotalVotesCast     int        `json:"total_votes_cast"`
	ApprovalThreshold  int        `json:"approval_threshold"`
	VotingStartedAt    time.Time  `json:"voting_started_at"`
	VotingExpiresAt    time.Time  `json:"voting_expires_at"`
	FinalizedAt        *time.Time `json:"finalized_at,omitempty"`
	SnapshotProposalID *string    `json:"snapshot_proposal_id,omitempty"`
}

type ProposalFeedItem struct {
	Proposal ProposalResponse    `json:"proposal"`
	UserA    ProfileCardResponse `json:"user_a"`
	UserB    ProfileCardResponse `json:"user_b"`
}

type ProposalFeedResponse struct {
	Items []ProposalFeedItem `json:"items"`
}

type VoteRequest struct {
	Choice *bool `json:"choice"`
}

type VoteResponse struct {
	OK       bool             `json:"ok"`
	Proposal ProposalResponse `json:"proposal"`
}
