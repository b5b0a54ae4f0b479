package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/remodel-leadbot/cmd/mainconfig"
	"github.com/wolfman30/remodel-leadbot/internal/api/router"
	"github.com/wolfman30/remodel-leadbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/remodel-leadbot/internal/config"
	"github.com/wolfman30/remodel-leadbot/internal/conversation"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	httpmiddleware "github.com/wolfman30/remodel-leadbot/internal/http/middleware"
	"github.com/wolfman30/remodel-leadbot/internal/leads"
	"github.com/wolfman30/remodel-leadbot/internal/observability/metrics"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

func main() {
	// Local development reads .env; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logger.Info("starting remodel-leadbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"email_provider", cfg.EmailProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler http.Handler
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// buildApp wires persistence, integrations and HTTP handlers. Background
// goroutines stop when ctx is done.
func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	stores := bootstrap.BuildStores(cfg, pool, redisClient, logger)
	a := &app{pool: pool, redis: redisClient}

	var awsCfg *aws.Config
	if bootstrap.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	notifier, err := bootstrap.BuildNotifier(cfg, awsCfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	metricsHandler, conversationMetrics := setupMetrics()
	orchestrator := bootstrap.BuildOrchestrator(cfg, stores, llm, notifier, conversationMetrics, logger)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	a.handler = router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(orchestrator, logger),
		CustomersHandler:    customers.NewHandler(stores.Customers, logger),
		LeadsHandler:        leads.NewHandler(stores.Leads, stores.Customers, notifier, logger),
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimiter:         limiter,
		HealthChecks:        healthChecks(pool, redisClient),
	})
	return a, nil
}

// setupMetrics registers the conversation metrics on a dedicated registry
// along with the Go runtime collectors.
func setupMetrics() (http.Handler, *metrics.ConversationMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewConversationMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := make(map[string]router.HealthCheck)
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
