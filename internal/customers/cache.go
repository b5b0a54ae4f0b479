package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. Cache failures degrade to direct reads.
type CachedRepository struct {
	next   Repository
	redis  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	tracer trace.Tracer
	logger *logging.Logger
}

// NewCachedRepository wraps next with a Redis cache. A nil client returns a
// cache that always reads through.
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if next == nil {
		panic("customers: backing repository required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("leadbot.internal.customers.cache"),
		logger: logger,
	}
}

func cacheKey(customerID string) string {
	return fmt.Sprintf("customer:profile:%s", customerID)
}

// GetByID reads from Redis first. Concurrent misses for one ID share a single
// backing read.
func (c *CachedRepository) GetByID(ctx context.Context, customerID string) (*Profile, error) {
	ctx, span := c.tracer.Start(ctx, "customers.get_profile")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if profile, ok := c.readCache(ctx, customerID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return profile, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err, _ := c.group.Do(customerID, func() (any, error) {
		// Waiters share this call, so it must outlive the first caller.
		loadCtx := context.WithoutCancel(ctx)
		profile, err := c.next.GetByID(loadCtx, customerID)
		if err != nil {
			return nil, err
		}
		c.writeCache(loadCtx, profile)
		return profile, nil
	})
	if err != nil {
		if !errors.Is(err, ErrCustomerNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}
	out := *v.(*Profile)
	return &out, nil
}

// Create writes through to the backing repository and primes the cache.
func (c *CachedRepository) Create(ctx context.Context, req *CreateCustomerRequest) (*Profile, error) {
	profile, err := c.next.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, profile)
	return profile, nil
}

// List is not cached.
func (c *CachedRepository) List(ctx context.Context) ([]*Profile, error) {
	return c.next.List(ctx)
}

func (c *CachedRepository) readCache(ctx context.Context, customerID string) (*Profile, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(customerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("customer cache read failed", "customer_id", customerID, "error", err)
		}
		return nil, false
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		c.logger.Warn("customer cache entry corrupt", "customer_id", customerID, "error", err)
		return nil, false
	}
	return &profile, true
}

func (c *CachedRepository) writeCache(ctx context.Context, profile *Profile) {
	if c.redis == nil || profile == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.Warn("customer cache marshal failed", "customer_id", profile.CustomerID, "error", err)
		return
	}
	if err := c.redis.Set(ctx, cacheKey(profile.CustomerID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("customer cache write failed", "customer_id", profile.CustomerID, "error", err)
	}
}
