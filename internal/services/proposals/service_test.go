package proposals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const testVoter = "0x1111111111111111111111111111111111111111"

type stubProposalStore struct {
	open []model.Proposal
}

func (s *stubProposalStore) ListVotingForVoter(_ context.Context, _ string, _ time.Time) ([]model.Proposal, error) {
	return s.open, nil
}

type stubProfileStore struct {
	profiles map[string]model.Profile
}

func (s *stubProfileStore) GetByAddress(_ context.Context, address string) (model.Profile, error) {
	p, ok := s.profiles[address]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func openProposal(id int64, userA, userB string) model.Proposal {
	return model.Proposal{
		ID:              id,
		UserA:           userA,
		UserB:           userB,
		Status:          enums.ProposalStatusVoting,
		VotingExpiresAt: time.Now().Add(5 * time.Minute),
	}
}

func TestFeedReturnsCardsForEachPair(t *testing.T) {
	userA := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userB := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	store := &stubProposalStore{open: []model.Proposal{openProposal(1, userA, userB)}}
	profileDB := &stubProfileStore{profiles: map[string]model.Profile{
		userA: {WalletAddress: userA, Name: "Ana", Bio: "hiking", Answers: model.Answers{Dealbreakers: []string{"secret"}}},
		userB: {WalletAddress: userB, Name: "Ben", Bio: "cooking"},
	}}

	svc := NewService(store, profileDB)
	items, err := svc.Feed(context.Background(), testVoter)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("feed size = %d, want 1", len(items))
	}
	if items[0].UserA.Name != "Ana" || items[0].UserB.Name != "Ben" {
		t.Fatalf("unexpected cards: %+v", items[0])
	}
}

func TestFeedSkipsPairsWithMissingProfiles(t *testing.T) {
	userA := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	store := &stubProposalStore{open: []model.Proposal{
		openProposal(1, userA, "0xgone000000000000000000000000000000000000"),
	}}
	profileDB := &stubProfileStore{profiles: map[string]model.Profile{
		userA: {WalletAddress: userA, Name: "Ana"},
	}}

	svc := NewService(store, profileDB)
	items, err := svc.Feed(context.Background(), testVoter)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("feed size = %d, want 0", len(items))
	}
}

func TestFeedRejectsBadVoter(t *testing.T) {
	svc := NewService(&stubProposalStore{}, &stubProfileStore{})

	if _, err := svc.Feed(context.Background(), "not-a-wallet"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
