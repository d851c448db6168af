package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skydock-systems/skydock-stack/gateway/internal/metrics"
)

// notFoundMarker is cached for subdomains with no project so repeated
// requests for a bad hostname do not hammer the database.
const notFoundMarker = "__missing__"

// CachedResolver fronts another Resolver with a short-TTL Redis cache.
// Mappings change when a project is created, so a stale entry only delays
// a brand-new subdomain by at most the TTL.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
}

func NewCachedResolver(inner Resolver, redisURL string, ttl time.Duration) (*CachedResolver, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &CachedResolver{inner: inner, client: client, ttl: ttl}, nil
}

func (c *CachedResolver) Resolve(ctx context.Context, subdomain string) (string, error) {
	key := "resolver:" + subdomain

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		metrics.CacheHits.Inc()
		if cached == notFoundMarker {
			return "", ErrNotFound
		}
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Cache trouble is not worth failing the request over.
		return c.inner.Resolve(ctx, subdomain)
	}

	metrics.CacheMisses.Inc()

	projectID, err := c.inner.Resolve(ctx, subdomain)
	if errors.Is(err, ErrNotFound) {
		c.client.Set(ctx, key, notFoundMarker, c.ttl)
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	c.client.Set(ctx, key, projectID, c.ttl)
	return projectID, nil
}

func (c *CachedResolver) Close() error {
	return c.client.Close()
}
