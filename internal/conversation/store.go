package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Store persists conversation state.
type Store interface {
	GetConversation(ctx context.Context, conversationID string) (*State, error)
	EnsureConversation(ctx context.Context, conversationID, customerID string) error
	AppendTurn(ctx context.Context, conversationID string, turn Turn) error
	SaveFields(ctx context.Context, conversationID string, fields qualification.LeadFields, status qualification.Status) error
	// MarkQualifiedNotified records the notification and reports whether this
	// call was the one that set it.
	MarkQualifiedNotified(ctx context.Context, conversationID string) (bool, error)
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*State
	now   func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs: make(map[string]*State),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) GetConversation(ctx context.Context, conversationID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.convs[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return st.clone(), nil
}

func (s *MemoryStore) EnsureConversation(ctx context.Context, conversationID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[conversationID]; ok {
		return nil
	}
	st := NewState(conversationID, customerID)
	st.CreatedAt = s.now()
	st.UpdatedAt = st.CreatedAt
	s.convs[conversationID] = st
	return nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, conversationID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.convs[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now()
	}
	st.Turns = append(st.Turns, turn)
	st.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) SaveFields(ctx context.Context, conversationID string, fields qualification.LeadFields, status qualification.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.convs[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	st.Fields = fields
	st.LeadStatus = status
	st.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) MarkQualifiedNotified(ctx context.Context, conversationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.convs[conversationID]
	if !ok {
		return false, ErrConversationNotFound
	}
	if st.QualifiedNotifiedAt != nil {
		return false, nil
	}
	now := s.now()
	st.QualifiedNotifiedAt = &now
	return true, nil
}

// List returns copies of every stored conversation. Used by the lead
// projection when no database is configured.
func (s *MemoryStore) List(ctx context.Context) ([]*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*State, 0, len(s.convs))
	for _, st := range s.convs {
		out = append(out, st.clone())
	}
	return out, nil
}
