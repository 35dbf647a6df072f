package dto

import "time"

type MetricsResponse struct {
	QueueDepth    int       `json:"queue_depth"`
	ActiveVoting  int       `json:"active_voting"`
	ApprovedToday int       `json:"approved_today"`
	RecordedAt    time.Time `json:"recorded_at"`
}
