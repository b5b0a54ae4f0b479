package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// ProfileSource resolves the customer a lead belongs to.
type ProfileSource interface {
	GetByID(ctx context.Context, customerID string) (*customers.Profile, error)
}

// Notifier re-sends qualified-lead notifications.
type Notifier interface {
	NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo     Repository
	profiles ProfileSource
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new leads handler. notifier may be nil, in which
// case resends answer 503.
func NewHandler(repo Repository, profiles ProfileSource, notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /dashboard/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		CustomerID: q.Get("customer_id"),
		Limit:      defaultListLimit,
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= maxListLimit {
			filter.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if status := strings.TrimSpace(q.Get("status")); status != "" {
		filter.Status = qualification.Status(strings.ToLower(status))
		if !filter.Status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "customer_id", filter.CustomerID)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []*Lead{}
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

const defaultAnalyticsDays = 30

// Analytics handles GET /dashboard/analytics. The window is [since, until)
// over lead creation time; since defaults to `days` (30) before until, and
// until defaults to now. Dates are RFC 3339 or YYYY-MM-DD.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID := strings.TrimSpace(q.Get("customer_id"))

	until := h.now().UTC()
	if v := q.Get("until"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			http.Error(w, "invalid until", http.StatusBadRequest)
			return
		}
		until = t
	}
	days := defaultAnalyticsDays
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}
	since := until.AddDate(0, 0, -days)
	if v := q.Get("since"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = t
	}
	if !since.Before(until) {
		http.Error(w, "since must be before until", http.StatusBadRequest)
		return
	}

	leads, truncated, err := collectLeads(r.Context(), h.repo, customerID)
	if err != nil {
		h.logger.Error("failed to load leads for analytics", "error", err, "customer_id", customerID)
		http.Error(w, "failed to load analytics", http.StatusInternalServerError)
		return
	}
	if truncated {
		h.logger.Warn("analytics scan truncated", "customer_id", customerID, "limit", maxAnalyticsLeads)
	}

	summary := Summarize(leads, since, until)
	summary.Truncated = truncated
	writeJSON(w, http.StatusOK, summary)
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}

// ResendResponse is the body returned after a manual resend.
type ResendResponse struct {
	ConversationID string `json:"conversation_id"`
	Sent           bool   `json:"sent"`
}

// ResendQualified handles POST /leads/notify-qualified. It re-sends the
// notification for a stored qualified conversation.
func (h *Handler) ResendQualified(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	if req.CustomerID == "" || req.ConversationID == "" {
		http.Error(w, "customer_id and conversation_id are required", http.StatusBadRequest)
		return
	}
	if h.notifier == nil {
		http.Error(w, "notifications are not configured", http.StatusServiceUnavailable)
		return
	}

	log := h.logger.With("customer_id", req.CustomerID, "conversation_id", req.ConversationID)
	lead, err := h.repo.GetByID(r.Context(), req.ConversationID)
	switch {
	case errors.Is(err, ErrLeadNotFound):
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	case err != nil:
		log.Error("failed to load lead", "error", err)
		http.Error(w, "failed to load lead", http.StatusInternalServerError)
		return
	}
	if lead.CustomerID != req.CustomerID {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}
	if lead.Status != qualification.StatusQualified {
		http.Error(w, ErrNotQualified.Error(), http.StatusConflict)
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), req.CustomerID)
	switch {
	case errors.Is(err, customers.ErrCustomerNotFound):
		http.Error(w, "customer not found", http.StatusNotFound)
		return
	case err != nil:
		log.Error("failed to load customer", "error", err)
		http.Error(w, "failed to load customer", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.NotifyQualified(r.Context(), profile, lead.Fields(), lead.ConversationID); err != nil {
		log.Error("manual qualified lead notification failed", "error", err)
		http.Error(w, "notification failed", http.StatusBadGateway)
		return
	}

	log.Info("qualified lead notification re-sent")
	writeJSON(w, http.StatusOK, ResendResponse{ConversationID: lead.ConversationID, Sent: true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
