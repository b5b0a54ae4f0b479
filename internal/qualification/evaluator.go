package qualification

import "strings"

// Criteria are the customer-specific thresholds a lead is judged against.
type Criteria struct {
	CompanyName       string
	ServiceAreas      string // comma-separated zip prefixes
	MinimumBudget     int
	TimelineThreshold int // months
}

// ServiceAreaPrefix returns the first listed service-area prefix. Only this
// prefix is used when checking a lead's zip code.
func (c Criteria) ServiceAreaPrefix() string {
	first, _, _ := strings.Cut(c.ServiceAreas, ",")
	return strings.TrimSpace(first)
}

// InServiceArea reports whether zip falls within the service area.
func (c Criteria) InServiceArea(zip string) bool {
	return strings.HasPrefix(strings.TrimSpace(zip), c.ServiceAreaPrefix())
}

// DisqualifyReason names the criterion that ruled a lead out.
type DisqualifyReason string

const (
	ReasonNone     DisqualifyReason = ""
	ReasonArea     DisqualifyReason = "area"
	ReasonBudget   DisqualifyReason = "budget"
	ReasonTimeline DisqualifyReason = "timeline"
)

// Assessment is the per-criterion breakdown behind a Status.
type Assessment struct {
	Status            Status
	Reason            DisqualifyReason
	HasProjectType    bool
	HasLocation       bool
	HasValidLocation  bool
	HasBudget         bool
	MeetsMinBudget    bool
	HasTimeline       bool
	MeetsTimeline     bool
	HasName           bool
	HasEmail          bool
	HasPhone          bool
	HasAllContactInfo bool
}

// Assess checks fields against criteria. Disqualifying facts are checked
// before qualification and win regardless of what else is known.
func Assess(fields LeadFields, criteria Criteria) Assessment {
	a := Assessment{
		HasProjectType: fields.Has(FieldProjectType),
		HasLocation:    fields.Has(FieldZipCode),
		HasBudget:      fields.Has(FieldBudget),
		HasTimeline:    fields.Has(FieldTimelineMonths),
		HasName:        fields.Has(FieldName),
		HasEmail:       fields.Has(FieldEmail),
		HasPhone:       fields.Has(FieldPhone),
	}
	a.HasValidLocation = a.HasLocation && criteria.InServiceArea(fields.ZipCode)
	a.MeetsMinBudget = a.HasBudget && fields.Budget >= criteria.MinimumBudget
	a.MeetsTimeline = a.HasTimeline && fields.TimelineMonths <= criteria.TimelineThreshold
	a.HasAllContactInfo = a.HasName && a.HasEmail && a.HasPhone

	switch {
	case a.HasLocation && !a.HasValidLocation:
		a.Status, a.Reason = StatusDisqualified, ReasonArea
	case a.HasBudget && !a.MeetsMinBudget:
		a.Status, a.Reason = StatusDisqualified, ReasonBudget
	case a.HasTimeline && !a.MeetsTimeline:
		a.Status, a.Reason = StatusDisqualified, ReasonTimeline
	case a.HasProjectType && a.HasValidLocation && a.MeetsMinBudget && a.MeetsTimeline && a.HasAllContactInfo:
		a.Status = StatusQualified
	default:
		a.Status = StatusInProgress
	}
	return a
}

// Evaluate returns the lead status for fields under criteria.
func Evaluate(fields LeadFields, criteria Criteria) Status {
	return Assess(fields, criteria).Status
}
