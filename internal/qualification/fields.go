// Package qualification holds the lead qualification rules: field
// extraction from free text, first-write-wins merging, evaluation against a
// customer's criteria and the deterministic follow-up question policy.
package qualification

import "strings"

// Status is the qualification state of a conversation.
type Status string

const (
	StatusInProgress   Status = "in_progress"
	StatusQualified    Status = "qualified"
	StatusDisqualified Status = "disqualified"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusQualified, StatusDisqualified:
		return true
	}
	return false
}

// ParseStatus maps a stored value to a Status, defaulting to in progress.
func ParseStatus(value string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return StatusInProgress
	}
	return s
}

// Field names, in the order the dialogue policy asks for them.
const (
	FieldProjectType    = "project_type"
	FieldZipCode        = "zip_code"
	FieldBudget         = "budget"
	FieldTimelineMonths = "timeline_months"
	FieldName           = "name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
)

var fieldOrder = []string{
	FieldProjectType,
	FieldZipCode,
	FieldBudget,
	FieldTimelineMonths,
	FieldName,
	FieldEmail,
	FieldPhone,
}

// LeadFields is what is known about a lead. A zero value means the field has
// not been learned yet. The same type carries the partial result of a single
// extraction.
type LeadFields struct {
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Budget         int    `json:"budget,omitempty"`
	TimelineMonths int    `json:"timeline_months,omitempty"`
	ZipCode        string `json:"zip_code,omitempty"`
	Name           string `json:"name,omitempty"`
	ProjectType    string `json:"project_type,omitempty"`
}

// Has reports whether the named field is set.
func (f LeadFields) Has(field string) bool {
	switch field {
	case FieldEmail:
		return f.Email != ""
	case FieldPhone:
		return f.Phone != ""
	case FieldBudget:
		return f.Budget > 0
	case FieldTimelineMonths:
		return f.TimelineMonths > 0
	case FieldZipCode:
		return f.ZipCode != ""
	case FieldName:
		return f.Name != ""
	case FieldProjectType:
		return f.ProjectType != ""
	}
	return false
}

// Missing lists the unset fields in the order they are asked for.
func (f LeadFields) Missing() []string {
	var missing []string
	for _, field := range fieldOrder {
		if !f.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Present lists the set fields in dialogue order.
func (f LeadFields) Present() []string {
	var present []string
	for _, field := range fieldOrder {
		if f.Has(field) {
			present = append(present, field)
		}
	}
	return present
}

// IsEmpty reports whether no field is set.
func (f LeadFields) IsEmpty() bool {
	return len(f.Present()) == 0
}

// HasContactInfo reports whether name, email and phone are all known.
func (f LeadFields) HasContactInfo() bool {
	return f.Name != "" && f.Email != "" && f.Phone != ""
}
