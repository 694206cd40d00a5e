package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"regsync/internal/registration/models"
	"regsync/internal/registration/reconcile"
	"regsync/internal/registration/statusupdate"
	dErrors "regsync/pkg/domain-errors"
	audit "regsync/pkg/platform/audit"
	"regsync/pkg/platform/httputil"
	authmw "regsync/pkg/platform/middleware/auth"
	request "regsync/pkg/platform/middleware/request"
)

const (
	maxBodyBytes = 1 << 20

	// adminActor identifies changes made with the shared admin token.
	adminActor = "admin_token"
)

// Reconciler runs the registration pipeline for one user.
type Reconciler interface {
	Run(ctx context.Context, userID string) (*reconcile.Result, error)
}

// StatusUpdater forwards a status change upstream.
type StatusUpdater interface {
	Update(ctx context.Context, req statusupdate.UpdateRequest) error
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler serves the registration endpoints.
type Handler struct {
	logger      *slog.Logger
	reconciler  Reconciler
	updater     StatusUpdater
	auditor     AuditPublisher
	auditReader audit.Reader
}

type Option func(*Handler)

func WithAuditor(a AuditPublisher) Option {
	return func(h *Handler) {
		h.auditor = a
	}
}

func WithAuditReader(r audit.Reader) Option {
	return func(h *Handler) {
		h.auditReader = r
	}
}

// New creates a registration Handler.
func New(reconciler Reconciler, updater StatusUpdater, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:     logger,
		reconciler: reconciler,
		updater:    updater,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterUserRoutes mounts the routes for the authenticated caller. The router
// must already run RequireAuth.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Get("/me/registrations", h.handleListMine)
	r.Get("/me/registrations/summary", h.handleSummaryMine)
	r.Get("/me/subscriptions", h.handleSubscriptionsMine)
}

// RegisterAdminRoutes mounts the admin routes. The router must already run
// RequireAdminToken.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/users/{userID}/registrations", h.handleAdminList)
	r.Get("/admin/users/{userID}/audit", h.handleAdminAudit)
	r.Post("/admin/registrations/status", h.handleUpdateStatus)
}

type listResponse struct {
	UserID    string                    `json:"user_id"`
	Count     int                       `json:"count"`
	Records   []models.ClassifiedRecord `json:"records"`
	Sources   []reconcile.SourceReport  `json:"sources"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

type summaryResponse struct {
	UserID    string                                    `json:"user_id"`
	Latest    map[models.Bucket]models.ClassifiedRecord `json:"latest"`
	Counts    map[models.Bucket]int                     `json:"counts"`
	Sources   []reconcile.SourceReport                  `json:"sources"`
	FetchedAt time.Time                                 `json:"fetched_at"`
}

type auditResponse struct {
	UserID string        `json:"user_id"`
	Events []audit.Event `json:"events"`
}

func newListResponse(result *reconcile.Result, records []models.ClassifiedRecord) listResponse {
	return listResponse{
		UserID:    result.UserID,
		Count:     len(records),
		Records:   records,
		Sources:   result.Sources,
		FetchedAt: result.FetchedAt,
	}
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runForCaller(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(result, result.Records))
}

func (h *Handler) handleSummaryMine(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runForCaller(w, r)
	if !ok {
		return
	}

	counts := make(map[models.Bucket]int, len(models.Buckets))
	for _, b := range models.Buckets {
		counts[b] = 0
	}
	for _, rec := range result.Records {
		counts[rec.Bucket]++
	}

	httputil.WriteJSON(w, http.StatusOK, summaryResponse{
		UserID:    result.UserID,
		Latest:    result.LatestByBucket(),
		Counts:    counts,
		Sources:   result.Sources,
		FetchedAt: result.FetchedAt,
	})
}

func (h *Handler) handleSubscriptionsMine(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runForCaller(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(result, result.PaidOnly()))
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	result, err := h.run(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.emit(ctx, audit.Event{
		UserID:  result.UserID,
		Action:  string(audit.EventAdminRegistrationsViewed),
		ActorID: adminActor,
	})
	httputil.WriteJSON(w, http.StatusOK, newListResponse(result, result.Records))
}

func (h *Handler) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "user id is required"))
		return
	}
	if h.auditReader == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit log is not configured"))
		return
	}

	events, err := h.auditReader.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", request.GetRequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, auditResponse{UserID: userID, Events: events})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req statusupdate.UpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid status update request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.ActorID = adminActor

	if err := h.updater.Update(ctx, req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// No optimistic local update: the list is rebuilt from the sources.
	result, err := h.run(ctx, req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(result, result.Records))
}

func (h *Handler) runForCaller(w http.ResponseWriter, r *http.Request) (*reconcile.Result, bool) {
	ctx := r.Context()
	userID := authmw.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, false
	}

	result, err := h.run(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return result, true
}

// run reconciles userID and records a security event when sources leaked
// records belonging to someone else.
func (h *Handler) run(ctx context.Context, userID string) (*reconcile.Result, error) {
	result, err := h.reconciler.Run(ctx, userID)
	if err != nil {
		if errors.Is(err, reconcile.ErrUserIDRequired) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
		}
		h.logger.ErrorContext(ctx, "reconciliation failed",
			"request_id", request.GetRequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registrations")
	}

	if result.Stats.NotOwned > 0 {
		h.emit(ctx, audit.Event{
			UserID: result.UserID,
			Action: string(audit.EventForeignRecordsFiltered),
			Reason: strconv.Itoa(result.Stats.NotOwned) + " records owned by another user",
		})
	}
	return result, nil
}

func (h *Handler) emit(ctx context.Context, event audit.Event) {
	if h.auditor == nil {
		return
	}
	event.RequestID = request.GetRequestID(ctx)
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
