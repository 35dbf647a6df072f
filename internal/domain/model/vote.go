package model

import "time"

type VoterAssignment struct {
	ID           int64
	ProposalID   int64
	VoterAddress string
	CreatedAt    time.Time
}

type Vote struct {
	ID           int64
	ProposalID   int64
	VoterAddress string
	Choice       bool
	CreatedAt    time.Time
}
