package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

const (
	MetricQueueDepth    = "queue_depth"
	MetricActiveVoting  = "active_voting"
	MetricApprovedToday = "approved_today"

	metricsCacheKey = "metrics:lifecycle"
	metricsCacheTTL = 10 * time.Minute
)

type QueueGauge interface {
	CountUnconsumed(ctx context.Context) (int, error)
}

type ProposalGauge interface {
	CountByStatus(ctx context.Context, status enums.ProposalStatus) (int, error)
	CountApprovedSince(ctx context.Context, since time.Time) (int, error)
}

type MetricSink interface {
	Record(ctx context.Context, metrics []model.SystemMetric, at time.Time) error
}

type MetricCache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Metrics samples lifecycle gauges into postgres and mirrors the
// latest snapshot into redis for the dashboard endpoint.
type Metrics struct {
	queue     QueueGauge
	proposals ProposalGauge
	sink      MetricSink
	cache     MetricCache
	log       *zap.Logger
	now       func() time.Time
}

type MetricsSnapshot struct {
	QueueDepth    int       `json:"queue_depth"`
	ActiveVoting  int       `json:"active_voting"`
	ApprovedToday int       `json:"approved_today"`
	RecordedAt    time.Time `json:"recorded_at"`
}

func NewMetrics(queue QueueGauge, proposals ProposalGauge, sink MetricSink, cache MetricCache, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		queue:     queue,
		proposals: proposals,
		sink:      sink,
		cache:     cache,
		log:       logger,
		now:       time.Now,
	}
}

func (m *Metrics) Run(ctx context.Context) error {
	now := m.now().UTC()

	queueDepth, err := m.queue.CountUnconsumed(ctx)
	if err != nil {
		return fmt.Errorf("sample queue depth: %w", err)
	}
	activeVoting, err := m.proposals.CountByStatus(ctx, enums.ProposalStatusVoting)
	if err != nil {
		return fmt.Errorf("sample active voting: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	approvedToday, err := m.proposals.CountApprovedSince(ctx, midnight)
	if err != nil {
		return fmt.Errorf("sample approved today: %w", err)
	}

	samples := []model.SystemMetric{
		{Name: MetricQueueDepth, Value: int64(queueDepth)},
		{Name: MetricActiveVoting, Value: int64(activeVoting)},
		{Name: MetricApprovedToday, Value: int64(approvedToday)},
	}
	if err := m.sink.Record(ctx, samples, now); err != nil {
		return fmt.Errorf("record metrics: %w", err)
	}

	if m.cache != nil {
		snapshot := MetricsSnapshot{
			QueueDepth:    queueDepth,
			ActiveVoting:  activeVoting,
			ApprovedToday: approvedToday,
			RecordedAt:    now,
		}
		if err := m.cache.SetJSON(ctx, metricsCacheKey, snapshot, metricsCacheTTL); err != nil {
			m.log.Warn("failed to cache metrics snapshot", zap.Error(err))
		}
	}

	return nil
}

// CacheKey is exported for the API handler that reads the snapshot.
func CacheKey() string {
	return metricsCacheKey
}
