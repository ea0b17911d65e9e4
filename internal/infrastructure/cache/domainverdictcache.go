package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/embedgate/embedgate/internal/domain/widgetdomain"
)

// ErrVerdictNotCached signals a cache miss.
var ErrVerdictNotCached = errors.New("verdict not cached")

// DomainVerdictCache is a short-TTL Redis cache of direct-mode verification
// results keyed by normalized domain name. Callers treat any error here the
// same as a miss and fall through to the store; the cache only ever
// shortens the path to a verdict the store already produced, so the
// fail-closed contract is unaffected.
type DomainVerdictCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDomainVerdictCache creates a new DomainVerdictCache instance.
func NewDomainVerdictCache(client *redis.Client, prefix string, ttl time.Duration) *DomainVerdictCache {
	return &DomainVerdictCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the cached verdict for the domain, or ErrVerdictNotCached.
func (c *DomainVerdictCache) Get(ctx context.Context, domain string) (*widgetdomain.Result, error) {
	data, err := c.client.Get(ctx, c.buildKey(domain)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrVerdictNotCached
		}
		return nil, fmt.Errorf("failed to read verdict from redis: %w", err)
	}

	var result widgetdomain.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached verdict: %w", err)
	}
	return &result, nil
}

// Set stores the verdict with the configured TTL.
func (c *DomainVerdictCache) Set(ctx context.Context, domain string, result widgetdomain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(domain), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store verdict in redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached verdict, e.g. after an admin state change.
func (c *DomainVerdictCache) Invalidate(ctx context.Context, domain string) error {
	if err := c.client.Del(ctx, c.buildKey(domain)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate verdict in redis: %w", err)
	}
	return nil
}

func (c *DomainVerdictCache) buildKey(domain string) string {
	return c.prefix + domain
}
