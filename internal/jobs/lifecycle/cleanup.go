package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type QueueJanitor interface {
	DeleteConsumedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleanup prunes consumed queue entries past the retention window.
// Unconsumed entries are never deleted: a scored pair stays eligible
// until it is promoted.
type Cleanup struct {
	queue     QueueJanitor
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewCleanup(queue QueueJanitor, retention time.Duration, logger *zap.Logger) *Cleanup {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cleanup{
		queue:     queue,
		retention: retention,
		log:       logger,
		now:       time.Now,
	}
}

func (c *Cleanup) Run(ctx context.Context) error {
	cutoff := c.now().UTC().Add(-c.retention)
	deleted, err := c.queue.DeleteConsumedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune consumed queue entries: %w", err)
	}
	if deleted > 0 {
		c.log.Info("queue cleanup completed", zap.Int64("deleted", deleted))
	}
	return nil
}
