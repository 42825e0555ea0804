package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
)

// GroupRateLimiter enforces a minimum delay between requests to the same
// source group. Several sources can point at the same ATS backend, so the
// limit is keyed by group rather than by source.
type GroupRateLimiter struct {
	mu        sync.Mutex
	lastCall  map[string]time.Time // key: source group
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewGroupRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same source group.
func NewGroupRateLimiter(minDelay time.Duration) *GroupRateLimiter {
	return &GroupRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// SetOverride gives one group a delay different from the default.
func (r *GroupRateLimiter) SetOverride(group string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides == nil {
		r.overrides = make(map[string]time.Duration)
	}
	r.overrides[group] = delay
}

func (r *GroupRateLimiter) delayFor(group string) time.Duration {
	if d, ok := r.overrides[group]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until enough time has passed since the last request to the
// given group. Returns an error if the context is cancelled while waiting.
func (r *GroupRateLimiter) Wait(ctx context.Context, group string) error {
	r.mu.Lock()
	last, ok := r.lastCall[group]
	now := time.Now()
	minDelay := r.delayFor(group)

	if !ok {
		// First request for this group, no wait needed.
		r.lastCall[group] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= minDelay {
		r.lastCall[group] = now
		r.mu.Unlock()
		return nil
	}

	remaining := minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", group, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[group] = time.Now()
	r.mu.Unlock()

	return nil
}

// Ensure LimitedFetcher implements model.JobFetcher.
var _ model.JobFetcher = (*LimitedFetcher)(nil)

// LimitedFetcher is a decorator that enforces group-level rate limiting
// before delegating to the wrapped JobFetcher. All fetchers in the process
// should share the same limiter instance.
type LimitedFetcher struct {
	inner   model.JobFetcher
	limiter *GroupRateLimiter
}

// NewLimitedFetcher wraps a JobFetcher with group-level rate limiting.
func NewLimitedFetcher(inner model.JobFetcher, limiter *GroupRateLimiter) *LimitedFetcher {
	return &LimitedFetcher{inner: inner, limiter: limiter}
}

func (f *LimitedFetcher) SourceGroup() string { return f.inner.SourceGroup() }
func (f *LimitedFetcher) SourceName() string  { return f.inner.SourceName() }

// FetchJobs waits for the rate limiter to allow a request to this fetcher's
// group, then delegates to the wrapped fetcher.
func (f *LimitedFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	if err := f.limiter.Wait(ctx, f.inner.SourceGroup()); err != nil {
		return nil, err
	}
	return f.inner.FetchJobs(ctx)
}
