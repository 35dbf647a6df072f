package model

import "time"

// QueueEntry is a scored pair waiting to be promoted to a Proposal.
// Addresses are stored sorted so UserA < UserB lexicographically.
type QueueEntry struct {
	ID          int64
	UserA       string
	UserB       string
	PairHash    string
	Score       float64
	Reasons     []string
	GeneratedAt time.Time
	ConsumedAt  *time.Time
}
