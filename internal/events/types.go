package events

import "time"

// LeadQualifiedV1 is published once when a conversation first qualifies.
type LeadQualifiedV1 struct {
	CustomerID     string    `json:"customer_id"`
	CompanyName    string    `json:"company_name"`
	ContactEmail   string    `json:"contact_email"`
	ConversationID string    `json:"conversation_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ProjectType    string    `json:"project_type"`
	Budget         int       `json:"budget"`
	TimelineMonths int       `json:"timeline_months"`
	ZipCode        string    `json:"zip_code"`
	QualifiedAt    time.Time `json:"qualified_at"`
}

// EventType implements CanonicalEvent.
func (LeadQualifiedV1) EventType() string { return "leads.lead.qualified.v1" }
