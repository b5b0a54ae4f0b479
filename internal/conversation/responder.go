package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// ResponderRequest carries everything a generative reply may condition on.
type ResponderRequest struct {
	Message string
	Fields  qualification.LeadFields
	Status  qualification.Status
	Profile *customers.Profile
	History []Turn
}

// Responder produces a free-form assistant reply. Any error makes the caller
// fall back to the deterministic dialogue policy.
type Responder interface {
	Generate(ctx context.Context, req ResponderRequest) (string, error)
}

const (
	responderMaxTokens   = 200
	responderTemperature = 0.7
	responderMaxHistory  = 20
)

// LLMResponder generates replies in the assistant persona through an LLMClient.
type LLMResponder struct {
	client     LLMClient
	policy     *qualification.Policy
	maxHistory int
}

// NewLLMResponder returns a responder over client. A nil client yields a
// responder that always reports ErrResponderUnavailable.
func NewLLMResponder(client LLMClient, policy *qualification.Policy) *LLMResponder {
	if policy == nil {
		policy = qualification.NewPolicy("")
	}
	return &LLMResponder{client: client, policy: policy, maxHistory: responderMaxHistory}
}

func (r *LLMResponder) Generate(ctx context.Context, req ResponderRequest) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrResponderUnavailable
	}
	if fc, ok := r.client.(*FallbackLLMClient); ok && fc.Len() == 0 {
		return "", ErrResponderUnavailable
	}

	history := req.History
	if len(history) > r.maxHistory {
		history = history[len(history)-r.maxHistory:]
	}
	messages := chatMessages(history)
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: req.Message})

	resp, err := r.client.Complete(ctx, LLMRequest{
		System:      []string{r.systemPrompt(req)},
		Messages:    messages,
		MaxTokens:   responderMaxTokens,
		Temperature: responderTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("conversation: generate reply: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("conversation: generate reply: empty completion")
	}
	return text, nil
}

func (r *LLMResponder) systemPrompt(req ResponderRequest) string {
	criteria := req.Profile.Criteria()
	known, _ := json.Marshal(req.Fields)

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly remodeling specialist for %s.\n\n", r.policy.AssistantName(), criteria.CompanyName)
	b.WriteString("COMPANY INFO:\n")
	fmt.Fprintf(&b, "- Company: %s\n", criteria.CompanyName)
	fmt.Fprintf(&b, "- Service Areas: %s\n", criteria.ServiceAreas)
	fmt.Fprintf(&b, "- Minimum Budget: %s\n", r.policy.Money(criteria.MinimumBudget))
	fmt.Fprintf(&b, "- Timeline: Projects within %d months\n\n", criteria.TimelineThreshold)
	b.WriteString("QUALIFICATION SEQUENCE (ask only what's missing):\n")
	b.WriteString("1. PROJECT TYPE: What remodeling project are they considering?\n")
	b.WriteString("2. LOCATION: What's their zip code?\n")
	b.WriteString("3. BUDGET: What's their budget range?\n")
	b.WriteString("4. TIMELINE: When do they want to complete the project?\n")
	b.WriteString("5. NAME: Full name\n6. EMAIL: Best email address\n7. PHONE: Phone number\n\n")
	b.WriteString("GUIDELINES:\n")
	b.WriteString("- Be warm and professional\n")
	b.WriteString("- Ask ONE question at a time\n")
	b.WriteString("- If they provide multiple pieces of info, acknowledge all of it\n")
	b.WriteString("- Don't repeat questions if info already provided\n")
	fmt.Fprintf(&b, "- For timeline: anything %d months or LESS qualifies\n", criteria.TimelineThreshold)
	b.WriteString("- Never tell the lead whether they qualify; the team follows up\n\n")
	fmt.Fprintf(&b, "CURRENT INFO COLLECTED: %s\n", known)
	if missing := req.Fields.Missing(); len(missing) > 0 {
		fmt.Fprintf(&b, "NEXT MISSING: %s\n", missing[0])
	} else {
		b.WriteString("All information collected. Thank them and confirm the team will reach out.\n")
	}
	return b.String()
}
