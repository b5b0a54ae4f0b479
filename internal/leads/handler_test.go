package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (r *recordingNotifier) NotifyQualified(_ context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error {
	r.calls = append(r.calls, profile.ContactEmail+"|"+fields.Name+"|"+conversationID)
	return r.err
}

func newTestHandler(t *testing.T, notifier Notifier) *Handler {
	t.Helper()
	profiles := customers.NewInMemoryRepository()
	_, err := profiles.Create(context.Background(), &customers.CreateCustomerRequest{
		CustomerID:        "elite",
		CompanyName:       "Elite Remodeling",
		ContactEmail:      "owner@elite.example",
		ServiceAreas:      "90210",
		MinimumBudget:     75000,
		TimelineThreshold: 12,
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return NewHandler(NewStoreRepository(seededSource()), profiles, notifier, logging.Default())
}

func TestListLeads(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/leads?customer_id=elite&status=QUALIFIED&limit=5", nil)
	w := httptest.NewRecorder()
	h.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Leads[0].ConversationID != "a" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Limit != 5 || resp.Offset != 0 {
		t.Fatalf("unexpected paging %d/%d", resp.Limit, resp.Offset)
	}
}

func TestListLeads_InvalidStatus(t *testing.T) {
	h := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.ListLeads(w, httptest.NewRequest(http.MethodGet, "/dashboard/leads?status=hot", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListLeads_EmptyListIsArray(t *testing.T) {
	h := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.ListLeads(w, httptest.NewRequest(http.MethodGet, "/dashboard/leads?customer_id=nobody", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"leads":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestResendQualified(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		notifier *recordingNotifier
		want     int
		calls    int
	}{
		{"qualified lead is re-sent", `{"customer_id":"elite","conversation_id":"a"}`, &recordingNotifier{}, http.StatusOK, 1},
		{"unknown conversation", `{"customer_id":"elite","conversation_id":"zzz"}`, &recordingNotifier{}, http.StatusNotFound, 0},
		{"conversation of another customer", `{"customer_id":"elite","conversation_id":"c"}`, &recordingNotifier{}, http.StatusNotFound, 0},
		{"not qualified", `{"customer_id":"elite","conversation_id":"b"}`, &recordingNotifier{}, http.StatusConflict, 0},
		{"missing ids", `{"customer_id":"elite"}`, &recordingNotifier{}, http.StatusBadRequest, 0},
		{"bad json", `{`, &recordingNotifier{}, http.StatusBadRequest, 0},
		{"unregistered customer", `{"customer_id":"other","conversation_id":"c"}`, &recordingNotifier{}, http.StatusNotFound, 0},
		{"notifier failure", `{"customer_id":"elite","conversation_id":"a"}`, &recordingNotifier{err: errors.New("smtp down")}, http.StatusBadGateway, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.notifier)
			w := httptest.NewRecorder()
			h.ResendQualified(w, httptest.NewRequest(http.MethodPost, "/leads/notify-qualified", strings.NewReader(tt.body)))

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
			if len(tt.notifier.calls) != tt.calls {
				t.Fatalf("expected %d notifier calls, got %d", tt.calls, len(tt.notifier.calls))
			}
		})
	}
}

func TestResendQualified_PassesStoredFields(t *testing.T) {
	n := &recordingNotifier{}
	h := newTestHandler(t, n)

	w := httptest.NewRecorder()
	h.ResendQualified(w, httptest.NewRequest(http.MethodPost, "/leads/notify-qualified", strings.NewReader(`{"customer_id":"elite","conversation_id":"a"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if n.calls[0] != "owner@elite.example|Lead a|a" {
		t.Fatalf("unexpected call %q", n.calls[0])
	}
}

func TestResendQualified_NoNotifier(t *testing.T) {
	h := NewHandler(NewStoreRepository(seededSource()), customers.NewInMemoryRepository(), nil, nil)

	w := httptest.NewRecorder()
	h.ResendQualified(w, httptest.NewRequest(http.MethodPost, "/leads/notify-qualified", strings.NewReader(`{"customer_id":"elite","conversation_id":"a"}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
