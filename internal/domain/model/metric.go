package model

import "time"

type SystemMetric struct {
	Name       string
	Value      int64
	RecordedAt time.Time
}
