package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const testAddress = "0xAbCdEf0123456789abcdef0123456789ABCDEF01"

type stubProfileStore struct {
	saved    *model.Profile
	profiles map[string]model.Profile
	imageURL string
}

func (s *stubProfileStore) Upsert(_ context.Context, p model.Profile) error {
	s.saved = &p
	return nil
}

func (s *stubProfileStore) GetByAddress(_ context.Context, address string) (model.Profile, error) {
	p, ok := s.profiles[address]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubProfileStore) SetImageURL(_ context.Context, _, imageURL string) error {
	s.imageURL = imageURL
	return nil
}

func TestSaveNormalizesAddressAndBuildsEmbedding(t *testing.T) {
	store := &stubProfileStore{}
	svc := NewService(store)

	profile, err := svc.Save(context.Background(), Input{
		WalletAddress: testAddress,
		Name:          "Ana",
		Bio:           "I enjoy hiking",
		Age:           29,
		Answers:       model.Answers{Interests: []string{"hiking"}},
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if profile.WalletAddress != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("address not normalized: %q", profile.WalletAddress)
	}
	if len(profile.Embedding) != 128 {
		t.Fatalf("embedding length = %d, want 128", len(profile.Embedding))
	}
	if store.saved == nil {
		t.Fatal("profile was not stored")
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	svc := NewService(&stubProfileStore{})

	cases := []struct {
		name string
		in   Input
	}{
		{"bad address", Input{WalletAddress: "nope", Name: "Ana"}},
		{"empty name", Input{WalletAddress: testAddress, Name: "  "}},
		{"underage", Input{WalletAddress: testAddress, Name: "Ana", Age: 17}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Save(context.Background(), tc.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestGetMapsNotFound(t *testing.T) {
	svc := NewService(&stubProfileStore{profiles: map[string]model.Profile{}})

	_, err := svc.Get(context.Background(), testAddress)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestGetCardHidesAnswers(t *testing.T) {
	address := "0xabcdef0123456789abcdef0123456789abcdef01"
	store := &stubProfileStore{profiles: map[string]model.Profile{
		address: {
			WalletAddress: address,
			Name:          "Ana",
			Bio:           "hiking",
			Answers:       model.Answers{Dealbreakers: []string{"smoking"}},
		},
	}}
	svc := NewService(store)

	card, err := svc.GetCard(context.Background(), address)
	if err != nil {
		t.Fatalf("GetCard returned error: %v", err)
	}
	if card.Name != "Ana" || card.Bio != "hiking" {
		t.Fatalf("unexpected card: %+v", card)
	}
}
