package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/services/scoring"
)

const (
	minAge     = 18
	maxAge     = 120
	maxBioLen  = 2000
	maxNameLen = 100
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
)

type ProfileStore interface {
	Upsert(ctx context.Context, p model.Profile) error
	GetByAddress(ctx context.Context, address string) (model.Profile, error)
	SetImageURL(ctx context.Context, address, imageURL string) error
}

type Service struct {
	store ProfileStore
	now   func() time.Time
}

type Input struct {
	WalletAddress string
	Name          string
	Bio           string
	Age           int
	Location      string
	Answers       model.Answers
}

// PublicCard is the profile view exposed to voters and candidates.
// Structured answers never cross this boundary.
type PublicCard struct {
	WalletAddress string
	Name          string
	Bio           string
	Age           int
	Location      string
	ImageURL      string
}

func NewService(store ProfileStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Save upserts the caller's profile and refreshes the derived
// embedding from the structured answers.
func (s *Service) Save(ctx context.Context, in Input) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	if !validate.WalletAddress(in.WalletAddress) {
		return model.Profile{}, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return model.Profile{}, fmt.Errorf("invalid name: %w", ErrValidation)
	}

	bio := strings.TrimSpace(in.Bio)
	if len(bio) > maxBioLen {
		return model.Profile{}, fmt.Errorf("bio too long: %w", ErrValidation)
	}

	if in.Age != 0 && (in.Age < minAge || in.Age > maxAge) {
		return model.Profile{}, fmt.Errorf("invalid age: %w", ErrValidation)
	}

	now := s.now().UTC()
	profile := model.Profile{
		WalletAddress: validate.NormalizeAddress(in.WalletAddress),
		Name:          name,
		Bio:           bio,
		Age:           in.Age,
		Location:      strings.TrimSpace(in.Location),
		Answers:       in.Answers,
		Embedding:     scoring.BuildEmbedding(in.Answers),
		UpdatedAt:     now,
	}

	if err := s.store.Upsert(ctx, profile); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return profile, nil
}

// Get returns the full profile, answers included. Only for the owner.
func (s *Service) Get(ctx context.Context, address string) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	if !validate.WalletAddress(address) {
		return model.Profile{}, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	profile, err := s.store.GetByAddress(ctx, validate.NormalizeAddress(address))
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// GetCard returns the public view of any profile.
func (s *Service) GetCard(ctx context.Context, address string) (PublicCard, error) {
	profile, err := s.Get(ctx, address)
	if err != nil {
		return PublicCard{}, err
	}
	return Card(profile), nil
}

func (s *Service) SetImageURL(ctx context.Context, address, imageURL string) error {
	if s.store == nil {
		return fmt.Errorf("profile store is nil")
	}
	if !validate.WalletAddress(address) {
		return fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}
	if strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("empty image url: %w", ErrValidation)
	}

	return s.store.SetImageURL(ctx, validate.NormalizeAddress(address), imageURL)
}

func Card(p model.Profile) PublicCard {
	return PublicCard{
		WalletAddress: p.WalletAddress,
		Name:          p.Name,
		Bio:           p.Bio,
		Age:           p.Age,
		Location:      p.Location,
		ImageURL:      p.ImageURL,
	}
}
