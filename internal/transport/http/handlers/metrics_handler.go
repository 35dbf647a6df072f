package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/jobs/lifecycle"
	redisrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/redis"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

type MetricsCache interface {
	GetJSON(ctx context.Context, key string, target any) error
}

type MetricsSource interface {
	Latest(ctx context.Context) ([]model.SystemMetric, error)
}

// MetricsHandler serves the lifecycle dashboard snapshot. The redis
// mirror is consulted first; on a miss it falls back to the latest
// postgres samples.
type MetricsHandler struct {
	cache  MetricsCache
	source MetricsSource
}

func NewMetricsHandler(cache MetricsCache, source MetricsSource) *MetricsHandler {
	return &MetricsHandler{cache: cache, source: source}
}

func (h *MetricsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var snapshot lifecycle.MetricsSnapshot
		err := h.cache.GetJSON(r.Context(), lifecycle.CacheKey(), &snapshot)
		if err == nil {
			httperrors.Write(w, http.StatusOK, dto.MetricsResponse{
				QueueDepth:    snapshot.QueueDepth,
				ActiveVoting:  snapshot.ActiveVoting,
				ApprovedToday: snapshot.ApprovedToday,
				RecordedAt:    snapshot.RecordedAt,
			})
			return
		}
		if !errors.Is(err, redisrepo.ErrCacheMiss) && h.source == nil {
			writeInternal(w, "INTERNAL_ERROR", "failed to load metrics")
			return
		}
	}

	if h.source == nil {
		writeInternal(w, "METRICS_UNAVAILABLE", "metrics are unavailable")
		return
	}

	samples, err := h.source.Latest(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load metrics")
		return
	}

	res := dto.MetricsResponse{}
	var latest time.Time
	for _, sample := range samples {
		switch sample.Name {
		case lifecycle.MetricQueueDepth:
			res.QueueDepth = int(sample.Value)
		case lifecycle.MetricActiveVoting:
			res.ActiveVoting = int(sample.Value)
		case lifecycle.MetricApprovedToday:
			res.ApprovedToday = int(sample.Value)
		}
		if sample.RecordedAt.After(latest) {
			latest = sample.RecordedAt
		}
	}
	res.RecordedAt = latest

	httperrors.Write(w, http.StatusOK, res)
}
