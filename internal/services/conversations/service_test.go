package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

const (
	userA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	other = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type memConversationStore struct {
	conversations map[int64]model.Conversation
	messages      map[int64][]model.ChatMessage
	nextMessageID int64
}

func newMemStore(items ...model.Conversation) *memConversationStore {
	store := &memConversationStore{
		conversations: make(map[int64]model.Conversation),
		messages:      make(map[int64][]model.ChatMessage),
		nextMessageID: 1,
	}
	for _, c := range items {
		store.conversations[c.ID] = c
	}
	return store
}

func (m *memConversationStore) GetByID(_ context.Context, id int64) (model.Conversation, error) {
	c, ok := m.conversations[id]
	if !ok {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	return c, nil
}

func (m *memConversationStore) ListForUser(_ context.Context, address string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range m.conversations {
		if c.UserA == address || c.UserB == address {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memConversationStore) SetAccepted(_ context.Context, id int64, address string, accepted bool, now time.Time) (model.Conversation, error) {
	c, ok := m.conversations[id]
	if !ok {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	switch address {
	case c.UserA:
		c.UserAAccepted = &accepted
	case c.UserB:
		c.UserBAccepted = &accepted
	default:
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	if accepted &&
		c.UserAAccepted != nil && *c.UserAAccepted &&
		c.UserBAccepted != nil && *c.UserBAccepted &&
		c.UnlockedAt == nil {
		at := now
		c.UnlockedAt = &at
	}
	m.conversations[id] = c
	return c, nil
}

func (m *memConversationStore) InsertMessage(_ context.Context, msg model.ChatMessage) (int64, error) {
	c, ok := m.conversations[msg.ConversationID]
	if !ok || c.UnlockedAt == nil {
		return 0, pgrepo.ErrConversationLocked
	}
	id := m.nextMessageID
	m.nextMessageID++
	msg.ID = id
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return id, nil
}

func (m *memConversationStore) ListMessages(_ context.Context, conversationID int64, _ int) ([]model.ChatMessage, error) {
	return m.messages[conversationID], nil
}

func pendingConversation() model.Conversation {
	return model.Conversation{ID: 1, ProposalID: 10, UserA: userA, UserB: userB}
}

func TestRespondUnlocksAfterMutualAccept(t *testing.T) {
	store := newMemStore(pendingConversation())
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Respond(ctx, userA, 1, true)
	if err != nil {
		t.Fatalf("first Respond returned error: %v", err)
	}
	if first.UnlockedAt != nil {
		t.Fatal("conversation unlocked after a single accept")
	}

	second, err := svc.Respond(ctx, userB, 1, true)
	if err != nil {
		t.Fatalf("second Respond returned error: %v", err)
	}
	if second.UnlockedAt == nil {
		t.Fatal("conversation should unlock after mutual accept")
	}
}

func TestRespondDeclineNeverUnlocks(t *testing.T) {
	store := newMemStore(pendingConversation())
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Respond(ctx, userA, 1, true); err != nil {
		t.Fatalf("accept returned error: %v", err)
	}
	updated, err := svc.Respond(ctx, userB, 1, false)
	if err != nil {
		t.Fatalf("decline returned error: %v", err)
	}
	if updated.UnlockedAt != nil {
		t.Fatal("declined conversation must stay locked")
	}
}

func TestRespondIsFinal(t *testing.T) {
	store := newMemStore(pendingConversation())
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Respond(ctx, userA, 1, false); err != nil {
		t.Fatalf("decline returned error: %v", err)
	}
	if _, err := svc.Respond(ctx, userA, 1, true); !errors.Is(err, ErrAlreadyFinal) {
		t.Fatalf("expected ErrAlreadyFinal, got %v", err)
	}
}

func TestRespondRejectsNonMember(t *testing.T) {
	svc := NewService(newMemStore(pendingConversation()))

	if _, err := svc.Respond(context.Background(), other, 1, true); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestSendRequiresUnlock(t *testing.T) {
	store := newMemStore(pendingConversation())
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Send(ctx, userA, 1, "hello"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked before unlock, got %v", err)
	}

	if _, err := svc.Respond(ctx, userA, 1, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Respond(ctx, userB, 1, true); err != nil {
		t.Fatal(err)
	}

	msg, err := svc.Send(ctx, userA, 1, "  hello there  ")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.Message != "hello there" {
		t.Fatalf("message = %q, want trimmed text", msg.Message)
	}

	got, err := svc.Messages(ctx, userB, 1, 50)
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if len(got) != 1 || got[0].Sender != userA {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestMessagesLockedForPendingConversation(t *testing.T) {
	svc := NewService(newMemStore(pendingConversation()))

	if _, err := svc.Messages(context.Background(), userA, 1, 50); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
