package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	votesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/votes"
)

const testVoterAddress = "0x1111111111111111111111111111111111111111"

type proposalStoreStub struct {
	proposal model.Proposal
	castErr  error
}

func (s *proposalStoreStub) GetByID(context.Context, int64) (model.Proposal, error) {
	return s.proposal, nil
}

func (s *proposalStoreStub) CastVote(context.Context, int64, string, bool, time.Time) error {
	return s.castErr
}

type assignmentStoreStub struct {
	assigned bool
}

func (s assignmentStoreStub) IsAssigned(context.Context, int64, string) (bool, error) {
	return s.assigned, nil
}

type voteLimiterStub struct {
	retryAfter int64
	ok         bool
}

func (s voteLimiterStub) AllowVote(context.Context, string) (int64, bool, error) {
	return s.retryAfter, s.ok, nil
}

func newVoteRequest(t *testing.T, proposalID, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/proposals/"+proposalID+"/vote", bytes.NewReader([]byte(body)))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		WalletAddress: testVoterAddress,
	}))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", proposalID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestVoteReturnsUpdatedTallies(t *testing.T) {
	store := &proposalStoreStub{proposal: model.Proposal{
		ID:       7,
		PairHash: "abc",
		Status:   enums.ProposalStatusVoting,
		YesVotes: 3,
		NoVotes:  1,
	}}
	svc := votesvc.NewService(votesvc.Dependencies{
		Proposals:   store,
		Assignments: assignmentStoreStub{assigned: true},
		Limiter:     voteLimiterStub{ok: true},
	})
	h := NewProposalsHandler(nil, svc)

	rr := httptest.NewRecorder()
	h.Vote(rr, newVoteRequest(t, "7", `{"choice":true}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		OK       bool `json:"ok"`
		Proposal struct {
			ID       int64 `json:"id"`
			YesVotes int   `json:"yes_votes"`
			NoVotes  int   `json:"no_votes"`
		} `json:"proposal"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatal("expected ok response")
	}
	if payload.Proposal.ID != 7 || payload.Proposal.YesVotes != 3 || payload.Proposal.NoVotes != 1 {
		t.Fatalf("unexpected proposal payload: %+v", payload.Proposal)
	}
}

func TestVoteRejectsUnassignedVoter(t *testing.T) {
	svc := votesvc.NewService(votesvc.Dependencies{
		Proposals:   &proposalStoreStub{},
		Assignments: assignmentStoreStub{assigned: false},
		Limiter:     voteLimiterStub{ok: true},
	})
	h := NewProposalsHandler(nil, svc)

	rr := httptest.NewRecorder()
	h.Vote(rr, newVoteRequest(t, "7", `{"choice":false}`))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "NOT_ASSIGNED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestVoteReturnsRetryAfterWhenRateLimited(t *testing.T) {
	svc := votesvc.NewService(votesvc.Dependencies{
		Proposals:   &proposalStoreStub{},
		Assignments: assignmentStoreStub{assigned: true},
		Limiter:     voteLimiterStub{retryAfter: 42, ok: false},
	})
	h := NewProposalsHandler(nil, svc)

	rr := httptest.NewRecorder()
	h.Vote(rr, newVoteRequest(t, "7", `{"choice":true}`))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "RATE_LIMITED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
	if payload.RetryAfterSec != 42 {
		t.Fatalf("unexpected retry_after_sec: got %d want %d", payload.RetryAfterSec, 42)
	}
}

func TestVoteRequiresChoice(t *testing.T) {
	svc := votesvc.NewService(votesvc.Dependencies{
		Proposals:   &proposalStoreStub{},
		Assignments: assignmentStoreStub{assigned: true},
		Limiter:     voteLimiterStub{ok: true},
	})
	h := NewProposalsHandler(nil, svc)

	rr := httptest.NewRecorder()
	h.Vote(rr, newVoteRequest(t, "7", `{}`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}
