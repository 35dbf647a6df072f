package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const maxMessageLen = 4000

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("conversation not found")
	ErrNotMember    = errors.New("wallet is not part of this conversation")
	ErrLocked       = errors.New("conversation is not unlocked")
	ErrAlreadyFinal = errors.New("conversation response already recorded")
)

type Store interface {
	GetByID(ctx context.Context, id int64) (model.Conversation, error)
	ListForUser(ctx context.Context, address string) ([]model.Conversation, error)
	SetAccepted(ctx context.Context, id int64, address string, accepted bool, now time.Time) (model.Conversation, error)
	InsertMessage(ctx context.Context, msg model.ChatMessage) (int64, error)
	ListMessages(ctx context.Context, conversationID int64, limit int) ([]model.ChatMessage, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context, walletAddress string) ([]model.Conversation, error) {
	if s.store == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}
	if !validate.WalletAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	items, err := s.store.ListForUser(ctx, validate.NormalizeAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	return items, nil
}

// Respond records accept or decline for the caller's side. The chat
// unlocks only when both sides accept; a decline is final.
func (s *Service) Respond(ctx context.Context, walletAddress string, conversationID int64, accept bool) (model.Conversation, error) {
	if s.store == nil {
		return model.Conversation{}, fmt.Errorf("conversation store is nil")
	}
	if !validate.WalletAddress(walletAddress) {
		return model.Conversation{}, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}
	if conversationID <= 0 {
		return model.Conversation{}, fmt.Errorf("invalid conversation id: %w", ErrValidation)
	}

	address := validate.NormalizeAddress(walletAddress)
	current, err := s.get(ctx, conversationID, address)
	if err != nil {
		return model.Conversation{}, err
	}
	if decided(current, address) {
		return model.Conversation{}, ErrAlreadyFinal
	}

	updated, err := s.store.SetAccepted(ctx, conversationID, address, accept, s.now().UTC())
	if errors.Is(err, pgrepo.ErrConversationNotFound) {
		return model.Conversation{}, ErrNotFound
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("record conversation response: %w", err)
	}

	return updated, nil
}

// Send posts a message into an unlocked conversation.
func (s *Service) Send(ctx context.Context, walletAddress string, conversationID int64, text string) (model.ChatMessage, error) {
	if s.store == nil {
		return model.ChatMessage{}, fmt.Errorf("conversation store is nil")
	}
	if !validate.WalletAddress(walletAddress) {
		return model.ChatMessage{}, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxMessageLen {
		return model.ChatMessage{}, fmt.Errorf("invalid message: %w", ErrValidation)
	}

	address := validate.NormalizeAddress(walletAddress)
	if _, err := s.get(ctx, conversationID, address); err != nil {
		return model.ChatMessage{}, err
	}

	msg := model.ChatMessage{
		ConversationID: conversationID,
		Sender:         address,
		Message:        text,
	}
	id, err := s.store.InsertMessage(ctx, msg)
	if errors.Is(err, pgrepo.ErrConversationLocked) {
		return model.ChatMessage{}, ErrLocked
	}
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("send message: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = s.now().UTC()
	return msg, nil
}

func (s *Service) Messages(ctx context.Context, walletAddress string, conversationID int64, limit int) ([]model.ChatMessage, error) {
	if s.store == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}
	if !validate.WalletAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	address := validate.NormalizeAddress(walletAddress)
	conversation, err := s.get(ctx, conversationID, address)
	if err != nil {
		return nil, err
	}
	if conversation.UnlockedAt == nil {
		return nil, ErrLocked
	}

	items, err := s.store.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return items, nil
}

func (s *Service) get(ctx context.Context, conversationID int64, address string) (model.Conversation, error) {
	conversation, err := s.store.GetByID(ctx, conversationID)
	if errors.Is(err, pgrepo.ErrConversationNotFound) {
		return model.Conversation{}, ErrNotFound
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	if conversation.UserA != address && conversation.UserB != address {
		return model.Conversation{}, ErrNotMember
	}

	return conversation, nil
}

func decided(c model.Conversation, address string) bool {
	switch address {
	case c.UserA:
		return c.UserAAccepted != nil
	case c.UserB:
		return c.UserBAccepted != nil
	default:
		return false
	}
}
