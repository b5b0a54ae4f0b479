// Package leads projects stored conversations into the lead records shown
// on the dashboard.
package leads

import (
	"strings"
	"time"

	"github.com/wolfman30/remodel-leadbot/internal/conversation"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Lead is one conversation seen as a sales lead.
type Lead struct {
	ConversationID      string               `json:"conversation_id"`
	CustomerID          string               `json:"customer_id"`
	Status              qualification.Status `json:"lead_status"`
	Name                string               `json:"name,omitempty"`
	Email               string               `json:"email,omitempty"`
	Phone               string               `json:"phone,omitempty"`
	ProjectType         string               `json:"project_type,omitempty"`
	Budget              int                  `json:"budget,omitempty"`
	TimelineMonths      int                  `json:"timeline_months,omitempty"`
	ZipCode             string               `json:"zip_code,omitempty"`
	TurnCount           int                  `json:"turn_count"`
	QualifiedNotifiedAt *time.Time           `json:"qualified_notified_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Fields returns the lead's collected values.
func (l *Lead) Fields() qualification.LeadFields {
	return qualification.LeadFields{
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		ProjectType:    l.ProjectType,
		Budget:         l.Budget,
		TimelineMonths: l.TimelineMonths,
		ZipCode:        l.ZipCode,
	}
}

// FromState projects a stored conversation.
func FromState(st *conversation.State) *Lead {
	return &Lead{
		ConversationID:      st.ConversationID,
		CustomerID:          st.CustomerID,
		Status:              qualification.ParseStatus(string(st.LeadStatus)),
		Name:                st.Fields.Name,
		Email:               st.Fields.Email,
		Phone:               st.Fields.Phone,
		ProjectType:         st.Fields.ProjectType,
		Budget:              st.Fields.Budget,
		TimelineMonths:      st.Fields.TimelineMonths,
		ZipCode:             st.Fields.ZipCode,
		TurnCount:           len(st.Turns),
		QualifiedNotifiedAt: st.QualifiedNotifiedAt,
		CreatedAt:           st.CreatedAt,
		UpdatedAt:           st.UpdatedAt,
	}
}

// ListFilter narrows a lead listing. Empty strings match everything.
type ListFilter struct {
	CustomerID string
	Status     qualification.Status
	Limit      int
	Offset     int
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	f.CustomerID = strings.TrimSpace(f.CustomerID)
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ResendRequest is the body of POST /leads/notify-qualified.
type ResendRequest struct {
	CustomerID     string `json:"customer_id"`
	ConversationID string `json:"conversation_id"`
}
