package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	convsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/conversations"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

const defaultMessagePageSize = 50

type ConversationsHandler struct {
	service *convsvc.Service
}

func NewConversationsHandler(service *convsvc.Service) *ConversationsHandler {
	return &ConversationsHandler{service: service}
}

func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATION_SERVICE_UNAVAILABLE", "conversation service is unavailable")
		return
	}

	conversations, err := h.service.List(r.Context(), identity.WalletAddress)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	items := make([]dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		items = append(items, conversationResponse(c))
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationsListResponse{Items: items})
}

func (h *ConversationsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATION_SERVICE_UNAVAILABLE", "conversation service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversation id must be a positive integer")
		return
	}

	var req dto.ConversationRespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Accept == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "accept is required")
		return
	}

	conversation, err := h.service.Respond(r.Context(), identity.WalletAddress, conversationID, *req.Accept)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, conversationResponse(conversation))
}

func (h *ConversationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATION_SERVICE_UNAVAILABLE", "conversation service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversation id must be a positive integer")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), identity.WalletAddress, conversationID, req.Message)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, chatMessageResponse(msg))
}

func (h *ConversationsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATION_SERVICE_UNAVAILABLE", "conversation service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversation id must be a positive integer")
		return
	}

	limit := defaultMessagePageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	messages, err := h.service.Messages(r.Context(), identity.WalletAddress, conversationID, limit)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	items := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, chatMessageResponse(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.ChatMessagesResponse{Items: items})
}

func handleConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, convsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation request")
	case errors.Is(err, convsvc.ErrNotFound):
		writeNotFound(w, "CONVERSATION_NOT_FOUND", "conversation not found")
	case errors.Is(err, convsvc.ErrNotMember):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "NOT_A_MEMBER",
			Message: "wallet is not part of this conversation",
		})
	case errors.Is(err, convsvc.ErrLocked):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "CONVERSATION_LOCKED",
			Message: "conversation is not unlocked yet",
		})
	case errors.Is(err, convsvc.ErrAlreadyFinal):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "RESPONSE_FINAL",
			Message: "conversation response already recorded",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "conversation operation failed")
	}
}

func conversationIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func conversationResponse(c model.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		ID:            c.ID,
		ProposalID:    c.ProposalID,
		UserA:         c.UserA,
		UserB:         c.UserB,
		UserAAccepted: c.UserAAccepted,
		UserBAccepted: c.UserBAccepted,
		UnlockedAt:    c.UnlockedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func chatMessageResponse(m model.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
	}
}
