package qualification

import "testing"

func TestExtractBudget(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"dollar k", "$75k", 75000},
		{"dollar with separators", "$75,000", 75000},
		{"dollar no separators", "we have $75000 set aside", 75000},
		{"dollar thousand", "around $90 thousand", 90000},
		{"bare k", "budget is 120k", 120000},
		{"bare thousand", "about 80 thousand", 80000},
		{"dollars word", "100000 dollars", 100000},
		{"fractional k", "$75.5k", 75500},
		{"cents ignored", "$82,500.00", 82500},
		{"below floor", "budget around 500", 0},
		{"dollar below floor", "$900", 0},
		{"no budget", "we want a new kitchen", 0},
		{"kids is not k", "I have 2 kids", 0},
		{"phone digits are not budget", "call 555-123-4567", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).Budget
			if got != tt.want {
				t.Errorf("Extract(%q).Budget = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTimeline(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"8 weeks", 2},
		{"1 week", 1},
		{"within 6 months", 6},
		{"1 year", 12},
		{"2 years", 24},
		{"1 month", 1},
		{"sometime soon", 0},
		{"0 months", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Extract(tt.text).TimelineMonths
			if got != tt.want {
				t.Errorf("Extract(%q).TimelineMonths = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractContact(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantEmail string
		wantPhone string
	}{
		{"email", "reach me at jane.doe@example.com", "jane.doe@example.com", ""},
		{"dashed phone", "555-123-4567", "", "555-123-4567"},
		{"dotted phone", "my cell is 555.123.4567", "", "555.123.4567"},
		{"spaced phone", "555 123 4567", "", "555 123 4567"},
		{"plain phone", "5551234567", "", "5551234567"},
		{"parenthesized phone", "Call me at (555) 123-4567", "", "(555) 123-4567"},
		{"first email wins", "a@x.com or b@y.org", "a@x.com", ""},
		{"eleven digits is not a phone", "12345678901", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if got.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", got.Email, tt.wantEmail)
			}
			if got.Phone != tt.wantPhone {
				t.Errorf("Phone = %q, want %q", got.Phone, tt.wantPhone)
			}
		})
	}
}

func TestExtractZip(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain zip", "my zip is 90210", "90210"},
		{"zip plus four", "90210-1234", "90210"},
		{"budget digits are not a zip", "$75000", ""},
		{"phone digits are not a zip", "5551234567", ""},
		{"zip next to phone", "phone 555-123-4567 zip 90211", "90211"},
		{"six digits", "123456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).ZipCode
			if got != tt.want {
				t.Errorf("Extract(%q).ZipCode = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractProjectType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"We want to redo our master bath", "bathroom"},
		{"kitchen remodel", "kitchen"},
		{"Kitchens and baths", "kitchen"},
		{"living room refresh", "living room"},
		{"finish the basement", "basement"},
		{"a full remodel of the house", "whole home"},
		{"build an extension", "addition"},
		{"new garden shed", ""},
		{"hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Extract(tt.text).ProjectType
			if got != tt.want {
				t.Errorf("Extract(%q).ProjectType = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"My name is Jane Doe", "Jane Doe"},
		{"my name is jane doe and I need a kitchen", "Jane Doe"},
		{"I'm Jane Doe", "Jane Doe"},
		{"I’m Jane Doe", "Jane Doe"},
		{"I am John Smith.", "John Smith"},
		{"this is Maria Lopez", "Maria Lopez"},
		{"Jane Doe", "Jane Doe"},
		{"jane o'brien", "Jane O'brien"},
		{"I'm Jane", ""},
		{"I'm Robert", ""},
		{"Im Robert", ""},
		{"I am Robert", ""},
		{"Don't know", ""},
		{"We're flexible", ""},
		{"It's urgent", ""},
		{"They'll call", ""},
		{"Jane", ""},
		{"I'm looking for a kitchen remodel", ""},
		{"I am interested in a bathroom", ""},
		{"Sounds good", ""},
		{"thank you", ""},
		{"kitchen remodel", ""},
		{"yes", ""},
		{"hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Extract(tt.text).Name
			if got != tt.want {
				t.Errorf("Extract(%q).Name = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSelfIntroductionDoesNotBlockLaterFullName(t *testing.T) {
	fields := Merge(LeadFields{}, Extract("I'm Robert"))
	if fields.Name != "" {
		t.Fatalf("single-token introduction stored name %q", fields.Name)
	}
	fields = Merge(fields, Extract("My name is Robert Smith"))
	if fields.Name != "Robert Smith" {
		t.Fatalf("Name = %q, want Robert Smith", fields.Name)
	}
}

func TestExtractFullMessage(t *testing.T) {
	msg := "Hi, I'm Jane Doe. We need a kitchen remodel in 90210 with a budget of $80k within 6 months. Email jane@example.com, phone 555-123-4567."
	got := Extract(msg)
	want := LeadFields{
		Email:          "jane@example.com",
		Phone:          "555-123-4567",
		Budget:         80000,
		TimelineMonths: 6,
		ZipCode:        "90210",
		Name:           "Jane Doe",
		ProjectType:    "kitchen",
	}
	if got != want {
		t.Fatalf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtractEmptyMessage(t *testing.T) {
	if got := Extract("   "); !got.IsEmpty() {
		t.Fatalf("expected no fields, got %+v", got)
	}
}
