package conversation

import (
	"time"

	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Turn is one message in a conversation transcript.
type Turn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the stored record of a chat session.
type State struct {
	ConversationID      string                   `json:"conversation_id"`
	CustomerID          string                   `json:"customer_id"`
	Turns               []Turn                   `json:"turns"`
	Fields              qualification.LeadFields `json:"fields"`
	LeadStatus          qualification.Status     `json:"lead_status"`
	QualifiedNotifiedAt *time.Time               `json:"qualified_notified_at,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// NewState returns the empty state used for a conversation's first message.
func NewState(conversationID, customerID string) *State {
	return &State{
		ConversationID: conversationID,
		CustomerID:     customerID,
		LeadStatus:     qualification.StatusInProgress,
	}
}

// Notified reports whether the qualified-lead notification already fired.
func (s *State) Notified() bool {
	return s != nil && s.QualifiedNotifiedAt != nil
}

// chatMessages converts stored turns into LLM messages.
func chatMessages(turns []Turn) []ChatMessage {
	out := make([]ChatMessage, 0, len(turns)+1)
	for _, t := range turns {
		out = append(out, ChatMessage{Role: t.Role, Content: t.Message})
	}
	return out
}

func (s *State) clone() *State {
	cp := *s
	cp.Turns = append([]Turn(nil), s.Turns...)
	if s.QualifiedNotifiedAt != nil {
		at := *s.QualifiedNotifiedAt
		cp.QualifiedNotifiedAt = &at
	}
	return &cp
}
