package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/rules"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const expireBatchSize = 100

type ProposalFinalizer interface {
	ListExpiredVoting(ctx context.Context, now time.Time, limit int) ([]model.Proposal, error)
	Finalize(ctx context.Context, proposalID int64, status enums.ProposalStatus, now time.Time) error
}

// Expirer closes voting windows. The outcome decision and the
// conversation unlock commit together, so a crash between them cannot
// strand an approved pair without a conversation.
type Expirer struct {
	proposals ProposalFinalizer
	log       *zap.Logger
	now       func() time.Time
}

func NewExpirer(proposals ProposalFinalizer, logger *zap.Logger) *Expirer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Expirer{
		proposals: proposals,
		log:       logger,
		now:       time.Now,
	}
}

func (e *Expirer) Run(ctx context.Context) error {
	now := e.now().UTC()
	expired, err := e.proposals.ListExpiredVoting(ctx, now, expireBatchSize)
	if err != nil {
		return fmt.Errorf("list expired proposals: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	approved, rejected := 0, 0
	for _, proposal := range expired {
		outcome := rules.DecideOutcome(proposal.YesVotes, proposal.NoVotes, proposal.ApprovalThreshold)

		err := e.proposals.Finalize(ctx, proposal.ID, outcome, now)
		if errors.Is(err, pgrepo.ErrProposalNotVoting) {
			// Another worker got there first.
			continue
		}
		if err != nil {
			e.log.Warn("failed to finalize proposal",
				zap.Int64("proposal_id", proposal.ID),
				zap.String("outcome", string(outcome)),
				zap.Error(err),
			)
			continue
		}

		if outcome == enums.ProposalStatusApproved {
			approved++
		} else {
			rejected++
		}
	}

	e.log.Info("proposal expiration completed",
		zap.Int("expired", len(expired)),
		zap.Int("approved", approved),
		zap.Int("rejected", rejected),
	)
	return nil
}
