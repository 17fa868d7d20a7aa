package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider spaces out Generate calls so a burst of rapid saves
// cannot flood the vendor API.
type RateLimitProvider struct {
	inner    Provider
	limiter  *rate.Limiter
	interval time.Duration
}

// WithRateLimit wraps p so at most one call starts per interval, with the
// given burst. A non-positive interval returns p unchanged.
func WithRateLimit(p Provider, interval time.Duration, burst int) Provider {
	if interval <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitProvider{
		inner:    p,
		limiter:  rate.NewLimiter(rate.Every(interval), burst),
		interval: interval,
	}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrRateLimit{RetryAfter: r.interval, Err: err}
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
