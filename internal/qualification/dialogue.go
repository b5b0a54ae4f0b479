package qualification

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultAssistantName is the persona used in prompts when none is configured.
const DefaultAssistantName = "Mason"

// GenericGreeting is the reply of last resort when a turn cannot be processed.
const GenericGreeting = "Hi! Thanks for reaching out about your remodeling project. What type of project are you thinking about?"

var companyQuestionPatterns = []string{
	"what company",
	"which company",
	"who are you with",
	"who do you work for",
	"what business is this",
}

// Policy picks the next question deterministically from what is known.
type Policy struct {
	assistantName string
	printer       *message.Printer
}

// NewPolicy creates a dialogue policy speaking as assistantName.
func NewPolicy(assistantName string) *Policy {
	if strings.TrimSpace(assistantName) == "" {
		assistantName = DefaultAssistantName
	}
	return &Policy{
		assistantName: assistantName,
		printer:       message.NewPrinter(language.English),
	}
}

// AssistantName returns the persona name.
func (p *Policy) AssistantName() string {
	return p.assistantName
}

// Reply answers a direct question about who the lead is talking to, and
// otherwise returns NextPrompt.
func (p *Policy) Reply(msg string, fields LeadFields, status Status, criteria Criteria) string {
	if status != StatusDisqualified && IsCompanyQuestion(msg) {
		return fmt.Sprintf("I work for %s. How can I help you with your remodeling project?", companyName(criteria))
	}
	return p.NextPrompt(fields, status, criteria)
}

// NextPrompt returns the first unmet step: a rejection when disqualified,
// otherwise a request for the next missing field, otherwise a closing
// confirmation.
func (p *Policy) NextPrompt(fields LeadFields, status Status, criteria Criteria) string {
	if status == StatusDisqualified {
		return p.Rejection(Assess(fields, criteria).Reason, criteria)
	}

	switch {
	case !fields.Has(FieldProjectType):
		return fmt.Sprintf("Hi! I'm %s from %s. I'd love to hear about your remodeling project. What type of project are you thinking about?",
			p.assistantName, companyName(criteria))
	case !fields.Has(FieldZipCode):
		return "Great! What's your zip code so I can make sure we service your area?"
	case !fields.Has(FieldBudget):
		return fmt.Sprintf("Perfect! To ensure we're the right fit, what's your approximate budget for this project? We typically work with projects starting at %s.",
			p.Money(criteria.MinimumBudget))
	case !fields.Has(FieldTimelineMonths):
		return "Excellent! When are you hoping to complete this project?"
	case !fields.Has(FieldName):
		return "Based on what you've shared, I'd love to connect you with our design team! What's your full name?"
	case !fields.Has(FieldEmail):
		return "Great! What's the best email address to reach you?"
	case !fields.Has(FieldPhone):
		return "Perfect! And what's your phone number?"
	}

	return fmt.Sprintf("Excellent! Our design team will reach out within 24 hours to discuss your %s project. Thank you!", fields.ProjectType)
}

// Rejection words a polite decline around the failing criterion.
func (p *Policy) Rejection(reason DisqualifyReason, criteria Criteria) string {
	company := companyName(criteria)
	switch reason {
	case ReasonArea:
		return fmt.Sprintf("Thank you for your interest! Unfortunately, %s currently only serves the %s area, so we aren't able to take on your project. We wish you the best of luck with it!",
			company, criteria.ServiceAreaPrefix())
	case ReasonBudget:
		return fmt.Sprintf("Thank you for sharing that! %s's projects typically start at %s, so we may not be the right fit for this one. We wish you the best of luck with your project!",
			company, p.Money(criteria.MinimumBudget))
	case ReasonTimeline:
		return fmt.Sprintf("Thank you for the details! %s schedules projects to be completed within %d months, so we may not be the right fit for your timeline. We wish you the best of luck with your project!",
			company, criteria.TimelineThreshold)
	}
	return fmt.Sprintf("Thank you for your interest! Unfortunately, %s isn't able to take on this project. We wish you the best of luck with it!", company)
}

// Money formats whole currency units with thousands separators, e.g. $75,000.
func (p *Policy) Money(amount int) string {
	return p.printer.Sprintf("$%d", amount)
}

// IsCompanyQuestion reports whether msg asks who the assistant works for.
func IsCompanyQuestion(msg string) bool {
	lower := strings.ToLower(msg)
	for _, pattern := range companyQuestionPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func companyName(c Criteria) string {
	if name := strings.TrimSpace(c.CompanyName); name != "" {
		return name
	}
	return "our team"
}
