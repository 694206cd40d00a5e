package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"regsync/internal/ratelimit/models"
	"regsync/pkg/platform/httputil"
	"regsync/pkg/requestcontext"
)

type RateLimiter interface {
	Check(ctx context.Context, key string, class models.EndpointClass) (*Decision, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitUser limits authenticated requests per user id. It must run after
// the auth middleware; requests without a user fall back to the client IP.
func (m *Middleware) RateLimitUser(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, func(ctx context.Context) (string, models.Scope) {
		if userID := requestcontext.UserID(ctx); userID != "" {
			return models.NewUserRateLimitKey(userID, class), models.ScopeUser
		}
		return models.NewIPRateLimitKey(requestcontext.ClientIP(ctx), class), models.ScopeIP
	})
}

// RateLimitIP limits requests per client IP.
func (m *Middleware) RateLimitIP(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, func(ctx context.Context) (string, models.Scope) {
		return models.NewIPRateLimitKey(requestcontext.ClientIP(ctx), class), models.ScopeIP
	})
}

func (m *Middleware) limit(class models.EndpointClass, keyFor func(context.Context) (string, models.Scope)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key, scope := keyFor(ctx)

			decision, err := m.limiter.Check(ctx, key, class)
			if err != nil {
				// Fail open.
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, decision)

			if !decision.Allowed {
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"class", class,
					"scope", scope,
					"user_id", requestcontext.UserID(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests,
					models.NewExceededResponse(scope, class, decision.RateLimitResult))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, decision *Decision) {
	if decision == nil || decision.RateLimitResult == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if decision.Degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
