// Package compliance emits audit events for changes to client registrations.
//
// Emit is synchronous: the caller learns whether the event was persisted and
// decides whether a failure should fail its own operation.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	audit "regsync/pkg/platform/audit"
	"regsync/pkg/requestcontext"
)

// Publisher validates, stamps and persists audit events.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func(context.Context) time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithClock overrides the timestamp source. By default events carry the
// request time pinned by the requesttime middleware.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = func(context.Context) time.Time { return now() }
	}
}

// New creates a compliance publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   requestcontext.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func validate(event audit.Event) error {
	if strings.TrimSpace(event.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", audit.ErrInvalidEvent)
	}
	if strings.TrimSpace(event.Action) == "" {
		return fmt.Errorf("%w: action is required", audit.ErrInvalidEvent)
	}
	return nil
}

func (p *Publisher) stamp(ctx context.Context, event *audit.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now(ctx).UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
}

// Emit stamps the event with an id, timestamp and category where missing and
// appends it to the store.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	p.stamp(ctx, &event)

	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.ObservePersistDuration(time.Since(start))
	if err != nil {
		p.metrics.IncPersistFailures(event.Action)
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit event not persisted",
				"action", event.Action,
				"category", event.Category,
				"user_id", event.UserID,
				"error", err,
			)
		}
		return fmt.Errorf("persist %s event: %w", event.Action, err)
	}

	p.metrics.IncEventsEmitted(event.Action)
	return nil
}
