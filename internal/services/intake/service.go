package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/pkg/validate"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const (
	roleAgent = "agent"
	roleUser  = "user"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSessionNotFound = errors.New("intake session not found")
	ErrSessionDone     = errors.New("intake session already completed")
	ErrSessionOwner    = errors.New("intake session belongs to another wallet")
)

type SessionStore interface {
	CreateSession(ctx context.Context, s model.IntakeSession) error
	GetSession(ctx context.Context, id string) (model.IntakeSession, error)
	AdvanceSession(ctx context.Context, id string, questionIndex int, status enums.IntakeStatus, at time.Time) error
	AppendMessage(ctx context.Context, msg model.IntakeMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]model.IntakeMessage, error)
}

type Service struct {
	store SessionStore
	now   func() time.Time
}

type StartResult struct {
	SessionID    string
	AgentMessage string
}

type ReplyResult struct {
	AgentMessage string
	Done         bool
	Answers      *model.Answers
	Summary      []string
}

func NewService(store SessionStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Start opens a fresh intake session for the wallet and returns the
// first question. Sessions survive restarts: state lives in the store,
// not in memory.
func (s *Service) Start(ctx context.Context, walletAddress string) (StartResult, error) {
	if s.store == nil {
		return StartResult{}, fmt.Errorf("intake store is nil")
	}
	if !validate.WalletAddress(walletAddress) {
		return StartResult{}, fmt.Errorf("invalid wallet address: %w", ErrValidation)
	}

	session := model.IntakeSession{
		ID:            uuid.NewString(),
		WalletAddress: validate.NormalizeAddress(walletAddress),
		QuestionIndex: 0,
		Status:        enums.IntakeStatusActive,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("create intake session: %w", err)
	}

	first := greeting + questionBank[0]
	if err := s.store.AppendMessage(ctx, model.IntakeMessage{
		SessionID: session.ID,
		Role:      roleAgent,
		Content:   first,
	}); err != nil {
		return StartResult{}, fmt.Errorf("record opening question: %w", err)
	}

	return StartResult{SessionID: session.ID, AgentMessage: first}, nil
}

// Reply records the user's answer and either asks the next question or
// closes the session with the extracted profile.
func (s *Service) Reply(ctx context.Context, walletAddress, sessionID, message string) (ReplyResult, error) {
	if s.store == nil {
		return ReplyResult{}, fmt.Errorf("intake store is nil")
	}
	if strings.TrimSpace(message) == "" {
		return ReplyResult{}, fmt.Errorf("empty message: %w", ErrValidation)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, pgrepo.ErrIntakeSessionNotFound) {
		return ReplyResult{}, ErrSessionNotFound
	}
	if err != nil {
		return ReplyResult{}, fmt.Errorf("get intake session: %w", err)
	}
	if session.WalletAddress != validate.NormalizeAddress(walletAddress) {
		return ReplyResult{}, ErrSessionOwner
	}
	if session.Status == enums.IntakeStatusDone {
		return ReplyResult{}, ErrSessionDone
	}

	if err := s.store.AppendMessage(ctx, model.IntakeMessage{
		SessionID: sessionID,
		Role:      roleUser,
		Content:   message,
	}); err != nil {
		return ReplyResult{}, fmt.Errorf("record user reply: %w", err)
	}

	next := session.QuestionIndex + 1
	if next < maxQuestions && next < len(questionBank) {
		question := questionBank[next]
		if err := s.store.AdvanceSession(ctx, sessionID, next, enums.IntakeStatusActive, s.now()); err != nil {
			return ReplyResult{}, fmt.Errorf("advance intake session: %w", err)
		}
		if err := s.store.AppendMessage(ctx, model.IntakeMessage{
			SessionID: sessionID,
			Role:      roleAgent,
			Content:   question,
		}); err != nil {
			return ReplyResult{}, fmt.Errorf("record next question: %w", err)
		}
		return ReplyResult{AgentMessage: question}, nil
	}

	history, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return ReplyResult{}, fmt.Errorf("load intake history: %w", err)
	}

	var replies []string
	for _, m := range history {
		if m.Role == roleUser {
			replies = append(replies, m.Content)
		}
	}

	answers := extractAnswers(replies)
	if err := s.store.AdvanceSession(ctx, sessionID, next, enums.IntakeStatusDone, s.now()); err != nil {
		return ReplyResult{}, fmt.Errorf("close intake session: %w", err)
	}

	closing := "Thank you! Let me summarize what I've learned. Please review:"
	if err := s.store.AppendMessage(ctx, model.IntakeMessage{
		SessionID: sessionID,
		Role:      roleAgent,
		Content:   closing,
	}); err != nil {
		return ReplyResult{}, fmt.Errorf("record closing message: %w", err)
	}

	return ReplyResult{
		AgentMessage: closing,
		Done:         true,
		Answers:      &answers,
		Summary:      summarize(answers),
	}, nil
}
