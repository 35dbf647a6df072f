package votes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const testVoter = "0xAbCdEf0123456789abcdef0123456789ABCDEF01"

type stubProposalStore struct {
	proposal model.Proposal
	castErr  error
	casts    int
}

func (s *stubProposalStore) GetByID(_ context.Context, id int64) (model.Proposal, error) {
	if s.proposal.ID != id {
		return model.Proposal{}, pgrepo.ErrProposalNotFound
	}
	return s.proposal, nil
}

func (s *stubProposalStore) CastVote(_ context.Context, _ int64, _ string, choice bool, _ time.Time) error {
	if s.castErr != nil {
		return s.castErr
	}
	s.casts++
	if choice {
		s.proposal.YesVotes++
	} else {
		s.proposal.NoVotes++
	}
	s.proposal.TotalVotesCast++
	return nil
}

type stubAssignments struct {
	assigned bool
}

func (s *stubAssignments) IsAssigned(_ context.Context, _ int64, _ string) (bool, error) {
	return s.assigned, nil
}

type stubLimiter struct {
	allow      bool
	retryAfter int64
}

func (s *stubLimiter) AllowVote(_ context.Context, _ string) (int64, bool, error) {
	return s.retryAfter, s.allow, nil
}

type stubRelay struct {
	enabled bool
	calls   int
	choice  int
	err     error
}

func (s *stubRelay) Enabled() bool { return s.enabled }

func (s *stubRelay) CastVote(_ context.Context, _, _ string, choice int) error {
	s.calls++
	s.choice = choice
	return s.err
}

func votingProposal() model.Proposal {
	snapID := "snap-1"
	return model.Proposal{
		ID:                 42,
		Status:             enums.ProposalStatusVoting,
		ApprovalThreshold:  5,
		VotingExpiresAt:    time.Now().Add(10 * time.Minute),
		SnapshotProposalID: &snapID,
	}
}

func newTestService(store *stubProposalStore, assignments *stubAssignments, limiter *stubLimiter, relay *stubRelay) *Service {
	deps := Dependencies{
		Proposals:   store,
		Assignments: assignments,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	if relay != nil {
		deps.Relay = relay
	}
	return NewService(deps)
}

func TestCastRecordsVoteAndRelays(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal()}
	relay := &stubRelay{enabled: true}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: true}, relay)

	result, err := svc.Cast(context.Background(), testVoter, 42, true)
	if err != nil {
		t.Fatalf("Cast returned error: %v", err)
	}
	if result.Proposal.YesVotes != 1 || result.Proposal.TotalVotesCast != 1 {
		t.Fatalf("tallies = %d yes / %d total", result.Proposal.YesVotes, result.Proposal.TotalVotesCast)
	}
	if relay.calls != 1 || relay.choice != 1 {
		t.Fatalf("relay calls=%d choice=%d, want 1 approve call", relay.calls, relay.choice)
	}
}

func TestCastRelayFailureDoesNotFailVote(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal()}
	relay := &stubRelay{enabled: true, err: errors.New("hub down")}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: true}, relay)

	if _, err := svc.Cast(context.Background(), testVoter, 42, false); err != nil {
		t.Fatalf("Cast returned error despite best-effort relay: %v", err)
	}
	if relay.choice != 2 {
		t.Fatalf("relay choice = %d, want 2 (reject)", relay.choice)
	}
}

func TestCastMapsDuplicateVote(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal(), castErr: pgrepo.ErrVoteDuplicate}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: true}, nil)

	if _, err := svc.Cast(context.Background(), testVoter, 42, true); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestCastMapsClosedProposal(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal(), castErr: pgrepo.ErrProposalNotVoting}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: true}, nil)

	if _, err := svc.Cast(context.Background(), testVoter, 42, true); !errors.Is(err, ErrProposalNotVoting) {
		t.Fatalf("expected ErrProposalNotVoting, got %v", err)
	}
}

func TestCastRejectsUnassignedVoter(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal()}
	svc := newTestService(store, &stubAssignments{assigned: false}, &stubLimiter{allow: true}, nil)

	if _, err := svc.Cast(context.Background(), testVoter, 42, true); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
	if store.casts != 0 {
		t.Fatal("vote should not reach the store")
	}
}

func TestCastRateLimited(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal()}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: false, retryAfter: 17}, nil)

	result, err := svc.Cast(context.Background(), testVoter, 42, true)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if result.RetryAfter != 17 {
		t.Fatalf("retry after = %d, want 17", result.RetryAfter)
	}
	if store.casts != 0 {
		t.Fatal("rate-limited vote should not reach the store")
	}
}

func TestCastRejectsBadAddress(t *testing.T) {
	store := &stubProposalStore{proposal: votingProposal()}
	svc := newTestService(store, &stubAssignments{assigned: true}, &stubLimiter{allow: true}, nil)

	if _, err := svc.Cast(context.Background(), "bogus", 42, true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
