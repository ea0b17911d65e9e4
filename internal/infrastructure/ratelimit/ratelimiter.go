// Package ratelimit throttles the public widget verification endpoint,
// which is callable by any embedded page without credentials.
package ratelimit

import "context"

// RateLimiter is a sliding-window request limiter keyed by caller.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limitPerMinute int) (bool, error)
	Reset(ctx context.Context, key string) error
}
