package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/domain"
)

// MemoryStore keeps all messages in a single map guarded by one mutex.
// The mutex gives every operation on a given id a total order, so a
// concurrent edit+delete resolves deterministically and the loser sees
// ErrNotFound.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string]*domain.Message)}
}

func (s *MemoryStore) Append(_ context.Context, sender, receiver, text string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m := &domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq,
	}
	s.messages[m.ID] = m
	return copyOf(m), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyOf(m), nil
}

func (s *MemoryStore) Edit(_ context.Context, id, newText string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.Text = newText
	m.Edited = true
	return copyOf(m), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, userA, userB string) (int64, error) {
	conv := domain.NewConversation(userA, userB)
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, m := range s.messages {
		if conv.Involves(m) {
			delete(s.messages, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) ListConversation(_ context.Context, userA, userB string) ([]*domain.Message, error) {
	conv := domain.NewConversation(userA, userB)
	s.mu.Lock()
	out := make([]*domain.Message, 0)
	for _, m := range s.messages {
		if conv.Involves(m) {
			out = append(out, copyOf(m))
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// copyOf keeps callers from mutating stored state through the returned
// pointer.
func copyOf(m *domain.Message) *domain.Message {
	c := *m
	return &c
}
