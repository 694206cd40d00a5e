// Package statusupdate changes the service status of a single registration
// through the upstream admin endpoint.
package statusupdate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"regsync/internal/registration/metrics"
	dErrors "regsync/pkg/domain-errors"
	audit "regsync/pkg/platform/audit"
	"regsync/pkg/requestcontext"
)

// Updater forwards a status change upstream.
type Updater interface {
	UpdateStatus(ctx context.Context, ticketID, status string) error
}

// AuditPublisher records status changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// UpdateRequest names the registration to change and the new status.
type UpdateRequest struct {
	UserID   string `json:"user_id"`
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
	// ActorID is the admin performing the change; blank for CLI use.
	ActorID string `json:"-"`
}

// Normalize trims every field.
func (r *UpdateRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.TicketID = strings.TrimSpace(r.TicketID)
	r.Status = strings.TrimSpace(r.Status)
	r.ActorID = strings.TrimSpace(r.ActorID)
}

// Validate requires user, ticket and status. Any non-blank status is accepted;
// the upstream owns the vocabulary.
func (r *UpdateRequest) Validate() error {
	switch {
	case r.UserID == "":
		return dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	case r.TicketID == "":
		return dErrors.New(dErrors.CodeBadRequest, "ticket_id is required")
	case r.Status == "":
		return dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	return nil
}

type Service struct {
	updater Updater
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(updater Updater, opts ...Option) *Service {
	s := &Service{
		updater: updater,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update validates the request and forwards it upstream. Upstream failures are
// returned as CodeBadGateway wrapping the cause. A failed audit write is
// logged and does not fail the update.
func (s *Service) Update(ctx context.Context, req UpdateRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.IncrementStatusUpdate("invalid")
		return err
	}

	if err := s.updater.UpdateStatus(ctx, req.TicketID, req.Status); err != nil {
		s.metrics.IncrementStatusUpdate("rejected")
		s.logger.WarnContext(ctx, "status update failed",
			"user_id", req.UserID,
			"ticket_id", req.TicketID,
			"status", req.Status,
			"error", err,
		)
		s.emit(ctx, audit.EventRegistrationStatusUpdateFailed, req, err.Error())

		message := "status update failed"
		if errors.Is(err, ErrUpstreamRejected) {
			message = "status update rejected by upstream"
		}
		return dErrors.Wrap(err, dErrors.CodeBadGateway, message)
	}

	s.metrics.IncrementStatusUpdate("ok")
	s.logger.InfoContext(ctx, "status updated",
		"user_id", req.UserID,
		"ticket_id", req.TicketID,
		"status", req.Status,
		"actor_id", req.ActorID,
	)
	s.emit(ctx, audit.EventRegistrationStatusUpdated, req, "")
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, req UpdateRequest, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		UserID:    req.UserID,
		Action:    string(action),
		TicketID:  req.TicketID,
		Status:    req.Status,
		ActorID:   req.ActorID,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(action),
			"user_id", req.UserID,
			"error", err,
		)
	}
}
