package customers

import (
	"errors"
	"testing"
)

func validRequest() CreateCustomerRequest {
	return CreateCustomerRequest{
		CompanyName:       "Elite Remodeling",
		ContactEmail:      "owner@elite.example.com",
		ServiceAreas:      "90210",
		MinimumBudget:     75000,
		TimelineThreshold: 12,
	}
}

func TestCreateCustomerRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateCustomerRequest)
		wantErr bool
	}{
		{"valid", func(*CreateCustomerRequest) {}, false},
		{"missing company", func(r *CreateCustomerRequest) { r.CompanyName = "" }, true},
		{"bad email", func(r *CreateCustomerRequest) { r.ContactEmail = "not-an-email" }, true},
		{"negative budget", func(r *CreateCustomerRequest) { r.MinimumBudget = -1 }, true},
		{"zero timeline", func(r *CreateCustomerRequest) { r.TimelineThreshold = 0 }, true},
		{"non numeric area", func(r *CreateCustomerRequest) { r.ServiceAreas = "902a" }, true},
		{"missing areas", func(r *CreateCustomerRequest) { r.ServiceAreas = " , " }, true},
		{"multiple areas", func(r *CreateCustomerRequest) { r.ServiceAreas = "902, 913" }, false},
		{"id with slash", func(r *CreateCustomerRequest) { r.CustomerID = "a/b" }, true},
		{"custom id", func(r *CreateCustomerRequest) { r.CustomerID = "elite-remodeling" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			req.Normalize()
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCustomer) {
				t.Fatalf("expected ErrInvalidCustomer, got %v", err)
			}
		})
	}
}

func TestNormalizeCleansAreas(t *testing.T) {
	req := validRequest()
	req.ServiceAreas = " 902 ,, 913 "
	req.ContactEmail = " Owner@Elite.Example.com "
	req.Normalize()
	if req.ServiceAreas != "902,913" {
		t.Fatalf("ServiceAreas = %q", req.ServiceAreas)
	}
	if req.ContactEmail != "owner@elite.example.com" {
		t.Fatalf("ContactEmail = %q", req.ContactEmail)
	}
}

func TestDefaultProfileCriteria(t *testing.T) {
	c := DefaultProfile("unknown").Criteria()
	if c.CompanyName != "Elite Remodeling" || c.ServiceAreas != "90210" || c.MinimumBudget != 75000 || c.TimelineThreshold != 12 {
		t.Fatalf("unexpected default criteria %+v", c)
	}

	var nilProfile *Profile
	if nilProfile.Criteria() != c {
		t.Fatal("nil profile should fall back to default criteria")
	}
}
