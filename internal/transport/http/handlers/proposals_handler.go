package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	proposalsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/proposals"
	votesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/votes"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

type ProposalsHandler struct {
	feed  *proposalsvc.Service
	votes *votesvc.Service
}

func NewProposalsHandler(feed *proposalsvc.Service, votes *votesvc.Service) *ProposalsHandler {
	return &ProposalsHandler{feed: feed, votes: votes}
}

func (h *ProposalsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.feed == nil {
		writeInternal(w, "PROPOSAL_SERVICE_UNAVAILABLE", "proposal service is unavailable")
		return
	}

	items, err := h.feed.Feed(r.Context(), identity.WalletAddress)
	if err != nil {
		if errors.Is(err, proposalsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load voting feed")
		return
	}

	out := make([]dto.ProposalFeedItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ProposalFeedItem{
			Proposal: proposalResponse(item.Proposal),
			UserA:    cardResponse(item.UserA),
			UserB:    cardResponse(item.UserB),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ProposalFeedResponse{Items: out})
}

func (h *ProposalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.votes == nil {
		writeInternal(w, "VOTE_SERVICE_UNAVAILABLE", "vote service is unavailable")
		return
	}

	proposalID, ok := proposalIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "proposal id must be a positive integer")
		return
	}

	proposal, err := h.votes.Get(r.Context(), proposalID)
	if err != nil {
		handleVoteError(w, err, 0)
		return
	}

	httperrors.Write(w, http.StatusOK, proposalResponse(proposal))
}

func (h *ProposalsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.votes == nil {
		writeInternal(w, "VOTE_SERVICE_UNAVAILABLE", "vote service is unavailable")
		return
	}

	proposalID, ok := proposalIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "proposal id must be a positive integer")
		return
	}

	var req dto.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Choice == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "choice is required")
		return
	}

	result, err := h.votes.Cast(r.Context(), identity.WalletAddress, proposalID, *req.Choice)
	if err != nil {
		handleVoteError(w, err, result.RetryAfter)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VoteResponse{
		OK:       true,
		Proposal: proposalResponse(result.Proposal),
	})
}

func handleVoteError(w http.ResponseWriter, err error, retryAfter int64) {
	switch {
	case errors.Is(err, votesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid vote request")
	case errors.Is(err, votesvc.ErrProposalNotFound):
		writeNotFound(w, "PROPOSAL_NOT_FOUND", "proposal not found")
	case errors.Is(err, votesvc.ErrNotAssigned):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "NOT_ASSIGNED",
			Message: "wallet is not assigned to this proposal",
		})
	case errors.Is(err, votesvc.ErrAlreadyVoted):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "ALREADY_VOTED",
			Message: "vote already cast for this proposal",
		})
	case errors.Is(err, votesvc.ErrProposalNotVoting):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "VOTING_CLOSED",
			Message: "proposal is no longer open for voting",
		})
	case errors.Is(err, votesvc.ErrRateLimited):
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "too many votes, slow down",
			RetryAfterSec: retryAfter,
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process vote")
	}
}

func proposalIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func proposalResponse(p model.Proposal) dto.ProposalResponse {
	return dto.ProposalResponse{
		ID:                 p.ID,
		PairHash:           p.PairHash,
		Score:              p.Score,
		Reasons:            p.Reasons,
		Status:             string(p.Status),
		YesVotes:           p.YesVotes,
		NoVotes:            p.NoVotes,
		TotalVotesCast:     p.TotalVotesCast,
		ApprovalThreshold:  p.ApprovalThreshold,
		VotingStartedAt:    p.VotingStartedAt,
		VotingExpiresAt:    p.VotingExpiresAt,
		FinalizedAt:        p.FinalizedAt,
		SnapshotProposalID: p.SnapshotProposalID,
	}
}
