package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
	"github.com/wolfman30/remodel-leadbot/pkg/phone"
	"github.com/wolfman30/remodel-leadbot/pkg/redact"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNoRecipient is returned when the customer has no contact email.
var ErrNoRecipient = errors.New("notify: customer has no contact email")

const defaultDashboardURL = "https://app.leadsavr.com/dashboard"

// LeadNotifier emails a customer's contact address when one of their
// conversations qualifies.
type LeadNotifier struct {
	email        EmailSender
	dashboardURL string
	printer      *message.Printer
	logger       *logging.Logger
}

// NewLeadNotifier creates a notifier sending through email. An empty
// dashboardURL links to the hosted dashboard.
func NewLeadNotifier(email EmailSender, dashboardURL string, logger *logging.Logger) *LeadNotifier {
	if email == nil {
		panic("notify: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	dashboardURL = strings.TrimRight(strings.TrimSpace(dashboardURL), "/")
	if dashboardURL == "" {
		dashboardURL = defaultDashboardURL
	}
	return &LeadNotifier{
		email:        email,
		dashboardURL: dashboardURL,
		printer:      message.NewPrinter(language.English),
		logger:       logger,
	}
}

// NotifyQualified sends the qualified-lead email.
func (n *LeadNotifier) NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error {
	if profile == nil || strings.TrimSpace(profile.ContactEmail) == "" {
		n.logger.Warn("notify: skipping qualified lead email, no recipient", "conversation_id", conversationID)
		return ErrNoRecipient
	}

	msg := n.BuildEmail(profile, fields, conversationID)
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: qualified lead email: %w", err)
	}
	n.logger.Info("notify: qualified lead email sent", "to", redact.Email(profile.ContactEmail), "conversation_id", conversationID, "customer_id", profile.CustomerID)
	return nil
}

// BuildEmail renders the qualified-lead email for profile's contact.
func (n *LeadNotifier) BuildEmail(profile *customers.Profile, fields qualification.LeadFields, conversationID string) EmailMessage {
	name := orDefault(fields.Name, "Not provided")
	email := orDefault(fields.Email, "Not provided")
	phoneNumber := orDefault(phone.Display(fields.Phone), "Not provided")
	project := orDefault(fields.ProjectType, "Not specified")
	zip := orDefault(fields.ZipCode, "Not specified")
	budget := "Not specified"
	if fields.Budget > 0 {
		budget = n.printer.Sprintf("$%d", fields.Budget)
	}
	timeline := "Not specified"
	if fields.TimelineMonths > 0 {
		timeline = fmt.Sprintf("%d months", fields.TimelineMonths)
	}
	link := n.dashboardURL + "?conversation_id=" + conversationID

	subject := fmt.Sprintf("🎉 New Qualified Lead - %s", orDefault(fields.Name, "Unknown"))

	body := fmt.Sprintf(`A new lead qualified for %s.

Name: %s
Email: %s
Phone: %s
Project Type: %s
Budget: %s
Timeline: %s
ZIP Code: %s

View in Dashboard: %s`, profile.CompanyName, name, email, phoneNumber, project, budget, timeline, zip, link)

	rows := []struct{ label, value string }{
		{"Name", name},
		{"Email", email},
		{"Phone", phoneNumber},
		{"Project Type", project},
		{"Budget", budget},
		{"Timeline", timeline},
		{"ZIP Code", zip},
	}
	var details strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&details, `<p style="margin: 10px 0;"><strong>%s:</strong> %s</p>`+"\n", row.label, html.EscapeString(row.value))
	}

	htmlBody := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: #667eea; padding: 30px; text-align: center;">
  <h1 style="color: white; margin: 0;">New Qualified Lead!</h1>
</div>
<div style="padding: 30px; background: #f7f8fa;">
  <h2 style="color: #333; margin-top: 0;">Lead Details</h2>
  <div style="background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
%s  </div>
  <div style="text-align: center;">
    <a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; font-weight: bold;">View in Dashboard</a>
  </div>
</div>
</div>`, details.String(), html.EscapeString(link))

	return EmailMessage{
		To:      profile.ContactEmail,
		ToName:  profile.CompanyName,
		Subject: subject,
		Body:    body,
		HTML:    htmlBody,
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
