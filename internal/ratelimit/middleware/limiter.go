package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"regsync/internal/ratelimit/metrics"
	"regsync/internal/ratelimit/models"
	"regsync/internal/ratelimit/store/bucket"
	"regsync/pkg/platform/circuit"
)

// BucketStore counts requests per key and window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Decision is a rate limit result plus whether the fallback store made it.
type Decision struct {
	*models.RateLimitResult
	Degraded bool
}

// Limiter applies per-class limits against a primary store. While the primary
// store keeps failing, an in-memory store takes over and the primary is only
// probed at the breaker's probe interval.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limits   map[models.EndpointClass]models.Limit
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithFallback replaces the in-memory fallback store.
func WithFallback(store BucketStore) LimiterOption {
	return func(l *Limiter) {
		l.fallback = store
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) LimiterOption {
	return func(l *Limiter) {
		l.breaker = b
	}
}

// NewLimiter creates a Limiter. A nil primary store means in-memory only.
func NewLimiter(primary BucketStore, limits map[models.EndpointClass]models.Limit, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary:  primary,
		fallback: bucket.NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit"),
		limits:   limits,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts one request for key under the class limit.
func (l *Limiter) Check(ctx context.Context, key string, class models.EndpointClass) (*Decision, error) {
	limit, ok := l.limits[class]
	if !ok {
		return nil, fmt.Errorf("no rate limit configured for class %q", class)
	}

	if l.primary == nil {
		return l.checkFallback(ctx, key, class, limit, false)
	}
	if !l.breaker.AllowPrimary() {
		return l.checkFallback(ctx, key, class, limit, true)
	}

	result, err := l.primary.Allow(ctx, key, limit.Requests, limit.Window)
	if err != nil {
		l.metrics.IncrementStoreErrors()
		_, change := l.breaker.RecordFailure()
		if change.Opened {
			l.metrics.SetDegraded(true)
			l.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback",
				"error", err,
			)
		}
		return l.checkFallback(ctx, key, class, limit, true)
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.metrics.SetDegraded(false)
		l.logger.InfoContext(ctx, "rate limit store recovered")
	}
	if !usePrimary {
		return l.checkFallback(ctx, key, class, limit, true)
	}

	l.metrics.IncrementDecision(string(class), result.Allowed)
	return &Decision{RateLimitResult: result}, nil
}

func (l *Limiter) checkFallback(ctx context.Context, key string, class models.EndpointClass, limit models.Limit, degraded bool) (*Decision, error) {
	result, err := l.fallback.Allow(ctx, key, limit.Requests, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("fallback rate limit: %w", err)
	}
	l.metrics.IncrementDecision(string(class), result.Allowed)
	return &Decision{RateLimitResult: result, Degraded: degraded}, nil
}
