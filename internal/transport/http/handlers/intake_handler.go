package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	intakesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/intake"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

type IntakeHandler struct {
	service *intakesvc.Service
}

func NewIntakeHandler(service *intakesvc.Service) *IntakeHandler {
	return &IntakeHandler{service: service}
}

func (h *IntakeHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTAKE_SERVICE_UNAVAILABLE", "intake service is unavailable")
		return
	}

	res, err := h.service.Start(r.Context(), identity.WalletAddress)
	if err != nil {
		handleIntakeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IntakeStartResponse{
		SessionID: res.SessionID,
		Message:   res.AgentMessage,
	})
}

func (h *IntakeHandler) Reply(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTAKE_SERVICE_UNAVAILABLE", "intake service is unavailable")
		return
	}

	var req dto.IntakeReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Reply(r.Context(), identity.WalletAddress, req.SessionID, req.Message)
	if err != nil {
		handleIntakeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IntakeReplyResponse{
		Message: res.AgentMessage,
		Done:    res.Done,
		Summary: res.Summary,
	})
}

func handleIntakeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intakesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid intake request")
	case errors.Is(err, intakesvc.ErrSessionNotFound):
		writeNotFound(w, "SESSION_NOT_FOUND", "intake session not found")
	case errors.Is(err, intakesvc.ErrSessionOwner):
		writeUnauthorized(w, "UNAUTHORIZED", "intake session belongs to another wallet")
	case errors.Is(err, intakesvc.ErrSessionDone):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "SESSION_COMPLETED",
			Message: "intake session already completed",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "intake operation failed")
	}
}
