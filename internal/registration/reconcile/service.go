package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"regsync/internal/registration/metrics"
	"regsync/internal/registration/models"
	"regsync/internal/registration/sources"
)

const defaultFetchTimeout = 10 * time.Second

// ErrUserIDRequired is returned by Run when no user is given.
var ErrUserIDRequired = errors.New("user id is required")

// SourceReport describes how one source behaved during a run.
type SourceReport struct {
	Source     models.SourceKind `json:"source"`
	OK         bool              `json:"ok"`
	Records    int               `json:"records"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// Result is the output of one reconciliation run.
type Result struct {
	UserID    string                    `json:"user_id"`
	Records   []models.ClassifiedRecord `json:"records"`
	Sources   []SourceReport            `json:"sources"`
	Stats     Stats                     `json:"stats"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// LatestByBucket returns the most recent record per lifecycle bucket.
func (r *Result) LatestByBucket() map[models.Bucket]models.ClassifiedRecord {
	return LatestByBucket(r.Records)
}

// PaidOnly returns the subscription view of the run.
func (r *Result) PaidOnly() []models.ClassifiedRecord {
	return PaidOnly(r.Records)
}

// Service runs the pipeline against live sources.
type Service struct {
	registry     *sources.Registry
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	fetchTimeout time.Duration
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithFetchTimeout bounds each individual source fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock overrides time.Now for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a reconciliation service over the given sources.
func New(registry *sources.Registry, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		logger:       slog.Default(),
		tracer:       otel.Tracer("regsync/reconcile"),
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches every source concurrently, waits for all of them to settle and
// reconciles the responses for userID. Source failures never fail the run;
// they show up as failed SourceReports.
func (s *Service) Run(ctx context.Context, userID string) (*Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "reconcile.Run")
	defer span.End()

	responses, reports := s.fetchAll(ctx, userID)
	records, stats := reconcile(responses, userID)
	if records == nil {
		records = []models.ClassifiedRecord{}
	}

	s.metrics.AddDropped("malformed", stats.Malformed)
	s.metrics.AddDropped("not_owned", stats.NotOwned)
	s.metrics.AddDropped("not_visible", stats.NotVisible)
	s.metrics.AddDropped("duplicate", stats.Duplicates)
	s.metrics.ObserveReconcile(time.Since(start), len(records))

	if stats.NotOwned > 0 {
		s.logger.WarnContext(ctx, "sources returned records owned by another user",
			"user_id", userID,
			"count", stats.NotOwned,
		)
	}
	s.logger.DebugContext(ctx, "reconciliation completed",
		"user_id", userID,
		"records", len(records),
		"failed_sources", stats.FailedFetches,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	span.SetAttributes(
		attribute.Int("regsync.records", len(records)),
		attribute.Int("regsync.failed_sources", stats.FailedFetches),
	)

	return &Result{
		UserID:    userID,
		Records:   records,
		Sources:   reports,
		Stats:     stats,
		FetchedAt: s.now(),
	}, nil
}

// fetchAll issues one fetch per source. Goroutines never return an error, so
// a failing source cannot cancel its siblings.
func (s *Service) fetchAll(ctx context.Context, userID string) ([]models.RawResponse, []SourceReport) {
	srcs := s.registry.Ordered()
	responses := make([]models.RawResponse, len(srcs))
	reports := make([]SourceReport, len(srcs))

	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			responses[i], reports[i] = s.fetchOne(ctx, src, userID)
			return nil
		})
	}
	_ = g.Wait()

	for i := range reports {
		if reports[i].OK {
			reports[i].Records = len(sources.Normalize(responses[i]))
		}
	}
	return responses, reports
}

func (s *Service) fetchOne(ctx context.Context, src sources.Source, userID string) (models.RawResponse, SourceReport) {
	kind := src.Kind()
	ctx, span := s.tracer.Start(ctx, "reconcile.fetch",
		trace.WithAttributes(attribute.String("regsync.source", kind.String())),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	body, err := src.Fetch(ctx, userID)
	elapsed := time.Since(start)
	report := SourceReport{Source: kind, DurationMS: elapsed.Milliseconds()}

	if err != nil {
		category := sources.Category(err)
		s.metrics.ObserveFetch(kind.String(), string(category), elapsed)
		s.logger.WarnContext(ctx, "registration source fetch failed",
			"source", kind,
			"user_id", userID,
			"category", category,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(category))
		report.Error = string(category)
		return models.FailedResponse(kind), report
	}

	s.metrics.ObserveFetch(kind.String(), "ok", elapsed)
	report.OK = true
	return models.RawResponse{Source: kind, Success: true, Body: body}, report
}
