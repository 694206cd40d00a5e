package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rlmw "regsync/internal/ratelimit/middleware"
	rlmodels "regsync/internal/ratelimit/models"
	"regsync/internal/registration/handler"
	"regsync/pkg/platform/httputil"
	adminmw "regsync/pkg/platform/middleware/admin"
	authmw "regsync/pkg/platform/middleware/auth"
	"regsync/pkg/platform/middleware/metadata"
	request "regsync/pkg/platform/middleware/request"
	"regsync/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

type routerDeps struct {
	handler    *handler.Handler
	logger     *slog.Logger
	authn      authmw.Authenticator
	adminToken string
	limiter    *rlmw.Middleware
	registry   *prometheus.Registry
	health     func(ctx context.Context) map[string]error
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(d.logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(d.health))
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.authn, d.logger))
		r.Use(d.limiter.RateLimitUser(rlmodels.ClassRead))
		d.handler.RegisterUserRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.limiter.RateLimitIP(rlmodels.ClassWrite))
		r.Use(adminmw.RequireAdminToken(d.adminToken, d.logger))
		d.handler.RegisterAdminRoutes(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports 503 when any configured dependency fails its check.
func healthHandler(check func(ctx context.Context) map[string]error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		if check != nil {
			for name, err := range check(ctx) {
				if err != nil {
					resp.Checks[name] = err.Error()
					resp.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, resp)
	}
}
