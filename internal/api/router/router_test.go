package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/remodel-leadbot/internal/conversation"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	httpmiddleware "github.com/wolfman30/remodel-leadbot/internal/http/middleware"
	"github.com/wolfman30/remodel-leadbot/internal/leads"
	"github.com/wolfman30/remodel-leadbot/internal/observability/metrics"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.Default()
	reg := prometheus.NewRegistry()
	profiles := customers.NewInMemoryRepository()
	store := conversation.NewMemoryStore()
	orchestrator := conversation.NewOrchestrator(profiles, store, logger,
		conversation.WithMetrics(metrics.NewConversationMetrics(reg)))

	cfg := &Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(orchestrator, logger),
		CustomersHandler:    customers.NewHandler(profiles, logger),
		LeadsHandler:        leads.NewHandler(leads.NewStoreRepository(store), profiles, nil, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"*"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
}

func TestRouterHealthEndpointDegraded(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.HealthChecks = map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}
	})

	rr := do(t, router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["redis"] != "unavailable" || resp.Checks["postgres"] != "ok" {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestRouterConversationFlow(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodPost, "/customers", `{"customer_id":"elite","company_name":"Elite Remodeling","contact_email":"owner@elite.example","service_areas":"90210","minimum_budget":75000,"timeline_threshold":12}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodPost, "/conversations/elite/message", `{"conversation_id":"conv-1","message":"I want a kitchen remodel"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("message: expected 200, got %d", rr.Code)
	}
	var msg map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg["conversation_id"] != "conv-1" || msg["lead_status"] != "in_progress" {
		t.Fatalf("unexpected response %+v", msg)
	}
	if !strings.Contains(msg["response"], "zip code") {
		t.Fatalf("expected zip code question, got %q", msg["response"])
	}

	rr = do(t, router, http.MethodGet, "/conversations/elite/history/conv-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rr.Code)
	}

	rr = do(t, router, http.MethodGet, "/dashboard/leads?customer_id=elite", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("leads: expected 200, got %d", rr.Code)
	}
	var list leads.ListLeadsResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode leads: %v", err)
	}
	if list.Count != 1 || list.Leads[0].ProjectType != "kitchen" {
		t.Fatalf("unexpected leads %+v", list)
	}

	rr = do(t, router, http.MethodGet, "/dashboard/analytics?customer_id=elite", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics: expected 200, got %d", rr.Code)
	}
	var summary leads.Analytics
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if summary.Total != 1 || summary.ByProjectType["kitchen"] != 1 {
		t.Fatalf("unexpected analytics %+v", summary)
	}

	rr = do(t, router, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "leadbot_conversation_turns_total") {
		t.Fatalf("expected turn metric to be exposed, got %d", rr.Code)
	}
}

func TestRouterCustomerNotFound(t *testing.T) {
	router := newTestRouter(t, nil)

	if rr := do(t, router, http.MethodGet, "/customers/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRouterResendWithoutNotifier(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodPost, "/leads/notify-qualified", `{"customer_id":"elite","conversation_id":"conv-1"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRouterRateLimit(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.RateLimiter = httpmiddleware.NewRateLimiter(0.001, 1)
	})

	if rr := do(t, router, http.MethodGet, "/customers", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodGet, "/customers", ""); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("health must not be rate limited, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/conversations/elite/message", nil)
	req.Header.Set("Origin", "https://elite.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://elite.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
