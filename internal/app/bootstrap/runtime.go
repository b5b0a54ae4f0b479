package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/remodel-leadbot/internal/config"
	"github.com/wolfman30/remodel-leadbot/internal/conversation"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/leads"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ConnectPostgresPool opens a pgx pool, or returns nil when url is empty or
// the database cannot be reached.
func ConnectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not available", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// Stores groups the persistence layer chosen at startup.
type Stores struct {
	Customers     customers.Repository
	Conversations conversation.Store
	Leads         leads.Repository
	Locker        conversation.Locker
}

// BuildStores picks Postgres when a pool is available and in-memory stores
// otherwise. With Redis, customer profiles are cached and conversation
// locks are shared across instances.
func BuildStores(cfg *appconfig.Config, pool *pgxpool.Pool, redisClient *redis.Client, logger *logging.Logger) Stores {
	if logger == nil {
		logger = logging.Default()
	}

	var stores Stores
	if pool != nil {
		stores.Customers = customers.NewPostgresRepository(pool)
		stores.Conversations = conversation.NewPostgresStore(pool)
		stores.Leads = leads.NewPostgresRepository(pool)
		logger.Info("using postgres persistence")
	} else {
		memory := conversation.NewMemoryStore()
		stores.Customers = customers.NewInMemoryRepository()
		stores.Conversations = memory
		stores.Leads = leads.NewStoreRepository(memory)
		logger.Warn("DATABASE_URL not set or unreachable; using in-memory persistence")
	}

	if redisClient != nil {
		stores.Customers = customers.NewCachedRepository(stores.Customers, redisClient, cfg.CustomerCacheTTL, logger)
		stores.Locker = conversation.NewRedisLocker(redisClient, cfg.ConversationLockTTL)
		logger.Info("redis customer cache and conversation lock enabled")
	} else {
		stores.Locker = conversation.NewKeyedMutex()
	}
	return stores
}
