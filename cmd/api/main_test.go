package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/remodel-leadbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/remodel-leadbot/internal/config"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

func TestSetupMetricsExposesConversationMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveTurn("in_progress", 0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "leadbot_conversation_turns_total") {
		t.Fatalf("expected turn counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func TestHealthChecksOnlyIncludeConfiguredDependencies(t *testing.T) {
	if checks := healthChecks(nil, nil); len(checks) != 0 {
		t.Fatalf("expected no checks, got %d", len(checks))
	}

	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	client := bootstrap.BuildRedisClient(context.Background(), cfg, nil, false)
	defer client.Close()

	checks := healthChecks(nil, client)
	check, ok := checks["redis"]
	if !ok {
		t.Fatalf("expected redis check")
	}
	if err := check(context.Background()); err != nil {
		t.Fatalf("redis check: %v", err)
	}
}

func testAppConfig() *appconfig.Config {
	return &appconfig.Config{
		AssistantName:      "Mason",
		LLMProvider:        bootstrap.ProviderNone,
		EmailProvider:      bootstrap.EmailProviderStub,
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
}

func TestBuildAppServesChatInMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, testAppConfig(), logging.New("error"))
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest(http.MethodPost, "/conversations/elite/message", strings.NewReader(`{"message":"I want a kitchen remodel"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		ConversationID string `json:"conversation_id"`
		Response       string `json:"response"`
		LeadStatus     string `json:"lead_status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ConversationID == "" || resp.Response == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.LeadStatus != "in_progress" {
		t.Fatalf("lead_status = %q", resp.LeadStatus)
	}

	health := httptest.NewRecorder()
	a.handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", health.Code)
	}
}

func TestBuildAppRejectsUnknownLLMProvider(t *testing.T) {
	cfg := testAppConfig()
	cfg.LLMProvider = "mystery"
	if _, err := buildApp(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
