package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/snapshot"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalNotVoting = errors.New("proposal is not open for voting")
	ErrNotAssigned       = errors.New("wallet is not assigned to this proposal")
	ErrAlreadyVoted      = errors.New("vote already cast")
	ErrRateLimited       = errors.New("vote rate limit exceeded")
)

type ProposalStore interface {
	GetByID(ctx context.Context, id int64) (model.Proposal, error)
	CastVote(ctx context.Context, proposalID int64, voter string, choice bool, now time.Time) error
}

type AssignmentStore interface {
	IsAssigned(ctx context.Context, proposalID int64, voter string) (bool, error)
}

type RateLimiter interface {
	AllowVote(ctx context.Context, wallet string) (int64, bool, error)
}

type Relay interface {
	Enabled() bool
	CastVote(ctx context.Context, proposalID, voter string, choice int) error
}

type Service struct {
	proposals   ProposalStore
	assignments AssignmentStore
	limiter     RateLimiter
	relay       Relay
	log         *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Proposals   ProposalStore
	Assignments AssignmentStore
	Limiter     RateLimiter
	Relay       Relay
	Logger      *zap.Logger
}

type CastResult struct {
	Proposal   model.Proposal
	RetryAfter int64
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		proposals:   deps.Proposals,
		assignments: deps.Assignments,
		limiter:     deps.Limiter,
		relay:       deps.Relay,
		log:         log,
		now:         time.Now,
	}
}

// Cast records a single vote for the proposal. The insert and the
// tally increment commit atomically, so a wallet can never vote twice
// and a closed proposal never gains votes.
func (s *Service) Cast(ctx context.Context, voterAddress string, proposalID int64, choice bool) (CastResult, error) {
	if s.proposals == nil || s.assignments == nil {
		return CastResult{}, fmt.Errorf("vote service is not wired")
	}
	if proposalID <= 0 {
		return CastResult{}, fmt.Errorf("invalid proposal id: %w", ErrValidation)
	}
	if !validate.WalletAddress(voterAddress) {
		return CastResult{}, fmt.Errorf("invalid voter address: %w", ErrValidation)
	}
	voter := validate.NormalizeAddress(voterAddress)

	if s.limiter != nil {
		retryAfter, ok, err := s.limiter.AllowVote(ctx, voter)
		if err != nil {
			return CastResult{}, fmt.Errorf("check vote rate: %w", err)
		}
		if !ok {
			return CastResult{RetryAfter: retryAfter}, ErrRateLimited
		}
	}

	assigned, err := s.assignments.IsAssigned(ctx, proposalID, voter)
	if err != nil {
		return CastResult{}, fmt.Errorf("check voter assignment: %w", err)
	}
	if !assigned {
		return CastResult{}, ErrNotAssigned
	}

	now := s.now().UTC()
	err = s.proposals.CastVote(ctx, proposalID, voter, choice, now)
	switch {
	case errors.Is(err, pgrepo.ErrVoteDuplicate):
		return CastResult{}, ErrAlreadyVoted
	case errors.Is(err, pgrepo.ErrProposalNotVoting):
		return CastResult{}, ErrProposalNotVoting
	case err != nil:
		return CastResult{}, fmt.Errorf("cast vote: %w", err)
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, pgrepo.ErrProposalNotFound) {
		return CastResult{}, ErrProposalNotFound
	}
	if err != nil {
		return CastResult{}, fmt.Errorf("reload proposal: %w", err)
	}

	s.relayVote(ctx, proposal, voter, choice)

	return CastResult{Proposal: proposal}, nil
}

// Get returns the proposal with current tallies for a voter's detail
// view.
func (s *Service) Get(ctx context.Context, proposalID int64) (model.Proposal, error) {
	if s.proposals == nil {
		return model.Proposal{}, fmt.Errorf("vote service is not wired")
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, pgrepo.ErrProposalNotFound) {
		return model.Proposal{}, ErrProposalNotFound
	}
	if err != nil {
		return model.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	return proposal, nil
}

// relayVote mirrors the vote to the snapshot hub. Best effort: a relay
// failure never affects the recorded vote.
func (s *Service) relayVote(ctx context.Context, proposal model.Proposal, voter string, choice bool) {
	if s.relay == nil || !s.relay.Enabled() {
		return
	}
	if proposal.SnapshotProposalID == nil || *proposal.SnapshotProposalID == "" {
		return
	}
	if proposal.Status != enums.ProposalStatusVoting {
		return
	}

	relayChoice := snapshot.ChoiceReject
	if choice {
		relayChoice = snapshot.ChoiceApprove
	}

	if err := s.relay.CastVote(ctx, *proposal.SnapshotProposalID, voter, relayChoice); err != nil {
		s.log.Warn("snapshot vote relay failed",
			zap.Int64("proposal_id", proposal.ID),
			zap.String("voter", voter),
			zap.Error(err),
		)
	}
}
