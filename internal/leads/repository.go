package leads

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wolfman30/remodel-leadbot/internal/conversation"
)

// Repository reads lead projections.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
	GetByID(ctx context.Context, conversationID string) (*Lead, error)
}

// ConversationSource is the in-memory conversation store surface the
// projection needs.
type ConversationSource interface {
	GetConversation(ctx context.Context, conversationID string) (*conversation.State, error)
	List(ctx context.Context) ([]*conversation.State, error)
}

// StoreRepository projects leads from an in-process conversation store.
type StoreRepository struct {
	source ConversationSource
}

// NewStoreRepository wraps source.
func NewStoreRepository(source ConversationSource) *StoreRepository {
	if source == nil {
		panic("leads: conversation source required")
	}
	return &StoreRepository{source: source}
}

// List returns matching leads, most recently active first.
func (r *StoreRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	filter = filter.normalized()
	states, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("leads: list conversations: %w", err)
	}

	var leads []*Lead
	for _, st := range states {
		if filter.CustomerID != "" && st.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && st.LeadStatus != filter.Status {
			continue
		}
		leads = append(leads, FromState(st))
	}
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].UpdatedAt.Equal(leads[j].UpdatedAt) {
			return leads[i].ConversationID < leads[j].ConversationID
		}
		return leads[i].UpdatedAt.After(leads[j].UpdatedAt)
	})

	if filter.Offset >= len(leads) {
		return []*Lead{}, nil
	}
	leads = leads[filter.Offset:]
	if len(leads) > filter.Limit {
		leads = leads[:filter.Limit]
	}
	return leads, nil
}

// GetByID returns the lead for one conversation.
func (r *StoreRepository) GetByID(ctx context.Context, conversationID string) (*Lead, error) {
	st, err := r.source.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: get conversation: %w", err)
	}
	return FromState(st), nil
}

var _ Repository = (*StoreRepository)(nil)
