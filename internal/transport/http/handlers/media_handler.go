package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	mediasvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/media"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/dto"
	httperrors "github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/errors"
)

const maxImageUploadSize = 10 << 20 // 10 MiB

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadSize)
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	image, err := h.service.UploadProfileImage(r.Context(), identity.WalletAddress, header.Filename, contentType, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileImageResponse{
		ObjectKey: image.ObjectKey,
		URL:       image.URL,
	})
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid media request")
	case errors.Is(err, mediasvc.ErrImageBadType):
		writeBadRequest(w, "UNSUPPORTED_IMAGE_TYPE", "only jpeg, png and webp images are accepted")
	case errors.Is(err, mediasvc.ErrImageTooBig):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
			Code:    "IMAGE_TOO_LARGE",
			Message: "image exceeds the 10 MiB limit",
		})
	case errors.Is(err, mediasvc.ErrImageNotSet):
		writeNotFound(w, "IMAGE_NOT_SET", "profile image not set")
	default:
		writeInternal(w, "INTERNAL_ERROR", "media operation failed")
	}
}
