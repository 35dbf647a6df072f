package intake

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const testAddress = "0xabcdef0123456789abcdef0123456789abcdef01"

type memIntakeStore struct {
	sessions map[string]model.IntakeSession
	messages map[string][]model.IntakeMessage
}

func newMemIntakeStore() *memIntakeStore {
	return &memIntakeStore{
		sessions: make(map[string]model.IntakeSession),
		messages: make(map[string][]model.IntakeMessage),
	}
}

func (m *memIntakeStore) CreateSession(_ context.Context, s model.IntakeSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memIntakeStore) GetSession(_ context.Context, id string) (model.IntakeSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return model.IntakeSession{}, pgrepo.ErrIntakeSessionNotFound
	}
	return s, nil
}

func (m *memIntakeStore) AdvanceSession(_ context.Context, id string, questionIndex int, status enums.IntakeStatus, _ time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return pgrepo.ErrIntakeSessionNotFound
	}
	s.QuestionIndex = questionIndex
	s.Status = status
	m.sessions[id] = s
	return nil
}

func (m *memIntakeStore) AppendMessage(_ context.Context, msg model.IntakeMessage) error {
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return nil
}

func (m *memIntakeStore) ListMessages(_ context.Context, sessionID string) ([]model.IntakeMessage, error) {
	return m.messages[sessionID], nil
}

func TestStartOpensSessionWithFirstQuestion(t *testing.T) {
	svc := NewService(newMemIntakeStore())

	result, err := svc.Start(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected non-empty session id")
	}
	if result.AgentMessage != greeting+questionBank[0] {
		t.Fatalf("unexpected opening message: %q", result.AgentMessage)
	}
}

func TestReplyWalksQuestionBankThenExtracts(t *testing.T) {
	store := newMemIntakeStore()
	svc := NewService(store)

	started, err := svc.Start(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	answers := []string{
		"I love to read and hike outdoors",
		"Pretty direct and straightforward",
		"Honesty above all, and loyalty",
		"Smoking is a dealbreaker",
		"Quiet weekends with a book",
		"Marriage and a long-term partnership",
		"Quiet nights in",
	}

	var last ReplyResult
	for i, msg := range answers {
		last, err = svc.Reply(context.Background(), testAddress, started.SessionID, msg)
		if err != nil {
			t.Fatalf("Reply %d returned error: %v", i, err)
		}
		if last.Done {
			t.Fatalf("session closed early after reply %d", i)
		}
		if last.AgentMessage != questionBank[i+1] {
			t.Fatalf("reply %d asked %q, want %q", i, last.AgentMessage, questionBank[i+1])
		}
	}

	// Eighth answer completes the intake.
	last, err = svc.Reply(context.Background(), testAddress, started.SessionID, "I stay active at the gym")
	if err != nil {
		t.Fatalf("final Reply returned error: %v", err)
	}
	if !last.Done {
		t.Fatal("expected session to be done after max questions")
	}
	if last.Answers == nil {
		t.Fatal("expected extracted answers")
	}

	got := *last.Answers
	if !contains(got.Interests, "reading") || !contains(got.Interests, "outdoors") {
		t.Fatalf("interests = %v", got.Interests)
	}
	if !contains(got.Values, "honesty") || !contains(got.Values, "loyalty") {
		t.Fatalf("values = %v", got.Values)
	}
	if !contains(got.Dealbreakers, "smoking") {
		t.Fatalf("dealbreakers = %v", got.Dealbreakers)
	}
	if got.CommunicationStyle != "direct" {
		t.Fatalf("communication style = %q", got.CommunicationStyle)
	}
	if got.Goals != "long-term commitment" {
		t.Fatalf("goals = %q", got.Goals)
	}
	if len(last.Summary) != 6 {
		t.Fatalf("summary lines = %d, want 6", len(last.Summary))
	}

	if store.sessions[started.SessionID].Status != enums.IntakeStatusDone {
		t.Fatal("session not marked done in store")
	}
}

func TestReplyRejectsForeignSession(t *testing.T) {
	svc := NewService(newMemIntakeStore())

	started, err := svc.Start(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	other := fmt.Sprintf("0x%040d", 7)
	if _, err := svc.Reply(context.Background(), other, started.SessionID, "hello"); !errors.Is(err, ErrSessionOwner) {
		t.Fatalf("expected ErrSessionOwner, got %v", err)
	}
}

func TestReplyUnknownSession(t *testing.T) {
	svc := NewService(newMemIntakeStore())

	if _, err := svc.Reply(context.Background(), testAddress, "missing", "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExtractAnswersDefaults(t *testing.T) {
	got := extractAnswers([]string{"nothing matching here"})
	if !contains(got.Interests, "general conversation") {
		t.Fatalf("interests = %v", got.Interests)
	}
	if !contains(got.Dealbreakers, "none specified") {
		t.Fatalf("dealbreakers = %v", got.Dealbreakers)
	}
	if got.CommunicationStyle != "balanced" {
		t.Fatalf("communication style = %q", got.CommunicationStyle)
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
