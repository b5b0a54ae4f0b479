// Package customers manages the remodeling companies that embed the chatbot
// and the qualification thresholds each of them sets.
package customers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// Defaults applied when a conversation references an unknown customer.
const (
	DefaultCompanyName       = "Elite Remodeling"
	DefaultServiceAreas      = "90210"
	DefaultMinimumBudget     = 75000
	DefaultTimelineThreshold = 12
)

// Profile is a customer's qualification setup. It does not change during a
// conversation.
type Profile struct {
	CustomerID        string    `json:"customer_id"`
	CompanyName       string    `json:"company_name"`
	ContactEmail      string    `json:"contact_email"`
	ServiceAreas      string    `json:"service_areas"`
	MinimumBudget     int       `json:"minimum_budget"`
	TimelineThreshold int       `json:"timeline_threshold"`
	CreatedAt         time.Time `json:"created_at"`
}

// DefaultProfile returns the profile used when customerID is not registered.
func DefaultProfile(customerID string) *Profile {
	return &Profile{
		CustomerID:        customerID,
		CompanyName:       DefaultCompanyName,
		ServiceAreas:      DefaultServiceAreas,
		MinimumBudget:     DefaultMinimumBudget,
		TimelineThreshold: DefaultTimelineThreshold,
	}
}

// Criteria converts the profile into evaluator thresholds.
func (p *Profile) Criteria() qualification.Criteria {
	if p == nil {
		return DefaultProfile("").Criteria()
	}
	return qualification.Criteria{
		CompanyName:       p.CompanyName,
		ServiceAreas:      p.ServiceAreas,
		MinimumBudget:     p.MinimumBudget,
		TimelineThreshold: p.TimelineThreshold,
	}
}

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	CustomerID        string `json:"customer_id" validate:"omitempty,max=64,printascii"`
	CompanyName       string `json:"company_name" validate:"required,max=200"`
	ContactEmail      string `json:"contact_email" validate:"required,email"`
	ServiceAreas      string `json:"service_areas" validate:"required,max=500"`
	MinimumBudget     int    `json:"minimum_budget" validate:"gte=0"`
	TimelineThreshold int    `json:"timeline_threshold" validate:"gte=1,lte=120"`
}

var validate = validator.New()

// Normalize trims whitespace and cleans the service-area list.
func (r *CreateCustomerRequest) Normalize() {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.ContactEmail = strings.ToLower(strings.TrimSpace(r.ContactEmail))

	var areas []string
	for _, area := range strings.Split(r.ServiceAreas, ",") {
		if area = strings.TrimSpace(area); area != "" {
			areas = append(areas, area)
		}
	}
	r.ServiceAreas = strings.Join(areas, ",")
}

// Validate checks the request against its field rules.
func (r *CreateCustomerRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidCustomer, fieldName(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}
	if strings.ContainsAny(r.CustomerID, " /?#") {
		return fmt.Errorf("%w: customer_id must be URL-safe", ErrInvalidCustomer)
	}
	for _, area := range strings.Split(r.ServiceAreas, ",") {
		if !isDigits(area) {
			return fmt.Errorf("%w: service area %q must be a zip prefix", ErrInvalidCustomer, area)
		}
	}
	return nil
}

// ErrInvalidCustomer wraps validation failures.
var ErrInvalidCustomer = errors.New("invalid customer")

func fieldName(structField string) string {
	switch structField {
	case "CustomerID":
		return "customer_id"
	case "CompanyName":
		return "company_name"
	case "ContactEmail":
		return "contact_email"
	case "ServiceAreas":
		return "service_areas"
	case "MinimumBudget":
		return "minimum_budget"
	case "TimelineThreshold":
		return "timeline_threshold"
	}
	return structField
}

func isDigits(s string) bool {
	if s == "" || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
