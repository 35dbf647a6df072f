package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrImageTooBig  = errors.New("image exceeds size limit")
	ErrImageNotSet  = errors.New("profile image not set")
	ErrImageBadType = errors.New("unsupported image type")
)

const (
	signedURLTTL = 5 * time.Minute
	maxImageSize = 10 << 20
)

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type ProfileStore interface {
	SetImageURL(ctx context.Context, address, imageURL string) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service stores profile images in object storage and records the
// object key on the profile. URLs handed out are short-lived presigned
// links.
type Service struct {
	profileDB ProfileStore
	storage   ObjectStorage
	now       func() time.Time
}

type Image struct {
	ObjectKey string
	URL       string
}

func NewService(profileStore ProfileStore, storage ObjectStorage) *Service {
	return &Service{
		profileDB: profileStore,
		storage:   storage,
		now:       time.Now,
	}
}

func (s *Service) UploadProfileImage(ctx context.Context, walletAddress, fileName, contentType string, body io.Reader, size int64) (Image, error) {
	if s.profileDB == nil || s.storage == nil {
		return Image{}, fmt.Errorf("media dependencies are not configured")
	}
	if !validate.WalletAddress(walletAddress) || body == nil || size <= 0 {
		return Image{}, ErrValidation
	}
	if size > maxImageSize {
		return Image{}, ErrImageTooBig
	}

	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if _, ok := allowedTypes[contentType]; !ok {
		return Image{}, ErrImageBadType
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Image{}, fmt.Errorf("ensure bucket: %w", err)
	}

	address := validate.NormalizeAddress(walletAddress)
	objectKey, err := buildImageObjectKey(address, fileName)
	if err != nil {
		return Image{}, fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.PutImage(ctx, objectKey, body, size, contentType); err != nil {
		return Image{}, fmt.Errorf("put object: %w", err)
	}

	if err := s.profileDB.SetImageURL(ctx, address, objectKey); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Image{}, fmt.Errorf("record image key: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return Image{}, fmt.Errorf("presign image url: %w", err)
	}

	return Image{ObjectKey: objectKey, URL: url}, nil
}

// ResolveURL converts a stored object key into a presigned URL.
func (s *Service) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}
	if strings.TrimSpace(objectKey) == "" {
		return "", ErrImageNotSet
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign image url: %w", err)
	}

	return url, nil
}

func buildImageObjectKey(address, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("profiles/%s/%s_%s%s", address, stamp, hex.EncodeToString(rnd), ext), nil
}
