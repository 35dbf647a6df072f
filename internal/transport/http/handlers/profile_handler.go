package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	profilesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/profiles"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Save(r.Context(), profilesvc.Input{
		WalletAddress: identity.WalletAddress,
		Name:          req.Name,
		Bio:           req.Bio,
		Age:           req.Age,
		Location:      req.Location,
		Answers:       answersToModel(req.Answers),
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.WalletAddress)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) Card(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	card, err := h.service.GetCard(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, cardResponse(card))
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
	case errors.Is(err, profilesvc.ErrProfileNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "profile operation failed")
	}
}

func profileResponse(p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		WalletAddress: p.WalletAddress,
		Name:          p.Name,
		Bio:           p.Bio,
		Age:           p.Age,
		Location:      p.Location,
		ImageURL:      p.ImageURL,
		Answers: dto.ProfileAnswers{
			Interests:          p.Answers.Interests,
			Values:             p.Answers.Values,
			CommunicationStyle: p.Answers.CommunicationStyle,
			Dealbreakers:       p.Answers.Dealbreakers,
			Lifestyle:          p.Answers.Lifestyle,
			Goals:              p.Answers.Goals,
		},
	}
}

func cardResponse(c profilesvc.PublicCard) dto.ProfileCardResponse {
	return dto.ProfileCardResponse{
		WalletAddress: c.WalletAddress,
		Name:          c.Name,
		Bio:           c.Bio,
		Age:           c.Age,
		Location:      c.Location,
		ImageURL:      c.ImageURL,
	}
}

func answersToModel(a dto.ProfileAnswers) model.Answers {
	return model.Answers{
		Interests:          a.Interests,
		Values:             a.Values,
		CommunicationStyle: a.CommunicationStyle,
		Dealbreakers:       a.Dealbreakers,
		Lifestyle:          a.Lifestyle,
		Goals:              a.Goals,
	}
}
