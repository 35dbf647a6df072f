package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

type fakeFinalizer struct {
	expired   []model.Proposal
	finalized map[int64]enums.ProposalStatus
	raceIDs   map[int64]struct{}
}

func (f *fakeFinalizer) ListExpiredVoting(_ context.Context, _ time.Time, _ int) ([]model.Proposal, error) {
	return f.expired, nil
}

func (f *fakeFinalizer) Finalize(_ context.Context, proposalID int64, status enums.ProposalStatus, _ time.Time) error {
	if _, raced := f.raceIDs[proposalID]; raced {
		return pgrepo.ErrProposalNotVoting
	}
	if f.finalized == nil {
		f.finalized = make(map[int64]enums.ProposalStatus)
	}
	f.finalized[proposalID] = status
	return nil
}

func expiredProposal(id int64, yes, no, threshold int) model.Proposal {
	return model.Proposal{
		ID:                id,
		Status:            enums.ProposalStatusVoting,
		YesVotes:          yes,
		NoVotes:           no,
		ApprovalThreshold: threshold,
		VotingExpiresAt:   time.Now().Add(-time.Minute),
	}
}

func TestExpirerDecidesOutcomes(t *testing.T) {
	finalizer := &fakeFinalizer{expired: []model.Proposal{
		expiredProposal(1, 5, 0, 5), // threshold met
		expiredProposal(2, 3, 2, 5), // majority without threshold
		expiredProposal(3, 2, 2, 5), // tie
		expiredProposal(4, 0, 0, 5), // no votes
		expiredProposal(5, 1, 4, 5), // majority against
	}}

	expirer := NewExpirer(finalizer, nil)
	if err := expirer.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := map[int64]enums.ProposalStatus{
		1: enums.ProposalStatusApproved,
		2: enums.ProposalStatusApproved,
		3: enums.ProposalStatusRejected,
		4: enums.ProposalStatusRejected,
		5: enums.ProposalStatusRejected,
	}
	for id, status := range want {
		if finalizer.finalized[id] != status {
			t.Errorf("proposal %d finalized as %q, want %q", id, finalizer.finalized[id], status)
		}
	}
}

func TestExpirerToleratesConcurrentFinalization(t *testing.T) {
	finalizer := &fakeFinalizer{
		expired: []model.Proposal{
			expiredProposal(1, 5, 0, 5),
			expiredProposal(2, 5, 0, 5),
		},
		raceIDs: map[int64]struct{}{1: {}},
	}

	expirer := NewExpirer(finalizer, nil)
	if err := expirer.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if _, ok := finalizer.finalized[1]; ok {
		t.Fatal("raced proposal should not be finalized here")
	}
	if finalizer.finalized[2] != enums.ProposalStatusApproved {
		t.Fatal("second proposal should still finalize")
	}
}

func TestExpirerNoExpired(t *testing.T) {
	expirer := NewExpirer(&fakeFinalizer{}, nil)
	if err := expirer.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
