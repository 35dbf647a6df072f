package proposals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/services/profiles"
)

var ErrValidation = errors.New("validation error")

type ProposalStore interface {
	ListVotingForVoter(ctx context.Context, voter string, now time.Time) ([]model.Proposal, error)
}

type ProfileStore interface {
	GetByAddress(ctx context.Context, address string) (model.Profile, error)
}

type Service struct {
	proposals ProposalStore
	profileDB ProfileStore
	now       func() time.Time
}

// FeedItem is one pending proposal for a voter: tallies plus the
// public cards of both members of the pair.
type FeedItem struct {
	Proposal model.Proposal
	UserA    profiles.PublicCard
	UserB    profiles.PublicCard
}

func NewService(proposalStore ProposalStore, profileStore ProfileStore) *Service {
	return &Service{
		proposals: proposalStore,
		profileDB: profileStore,
		now:       time.Now,
	}
}

// Feed lists open proposals assigned to the voter that still accept
// votes, soonest expiry first. Pairs whose profiles vanished are
// skipped rather than failing the whole feed.
func (s *Service) Feed(ctx context.Context, voterAddress string) ([]FeedItem, error) {
	if s.proposals == nil || s.profileDB == nil {
		return nil, fmt.Errorf("proposal service is not wired")
	}
	if !validate.WalletAddress(voterAddress) {
		return nil, fmt.Errorf("invalid voter address: %w", ErrValidation)
	}

	voter := validate.NormalizeAddress(voterAddress)
	open, err := s.proposals.ListVotingForVoter(ctx, voter, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list proposals for voter: %w", err)
	}

	items := make([]FeedItem, 0, len(open))
	for _, proposal := range open {
		cardA, err := s.card(ctx, proposal.UserA)
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		cardB, err := s.card(ctx, proposal.UserB)
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		items = append(items, FeedItem{Proposal: proposal, UserA: cardA, UserB: cardB})
	}

	return items, nil
}

func (s *Service) card(ctx context.Context, address string) (profiles.PublicCard, error) {
	profile, err := s.profileDB.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return profiles.PublicCard{}, err
		}
		return profiles.PublicCard{}, fmt.Errorf("load profile %s: %w", address, err)
	}
	return profiles.Card(profile), nil
}
