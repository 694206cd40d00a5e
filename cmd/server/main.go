package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	jwttoken "regsync/internal/jwt_token"
	"regsync/internal/platform/config"
	"regsync/internal/platform/httpserver"
	"regsync/internal/platform/logger"
	redisclient "regsync/internal/platform/redis"
	rlmetrics "regsync/internal/ratelimit/metrics"
	rlmw "regsync/internal/ratelimit/middleware"
	rlmodels "regsync/internal/ratelimit/models"
	"regsync/internal/ratelimit/store/bucket"
	"regsync/internal/registration/handler"
	"regsync/internal/registration/metrics"
	"regsync/internal/registration/reconcile"
	"regsync/internal/registration/sources"
	"regsync/internal/registration/statusupdate"
	audit "regsync/pkg/platform/audit"
	"regsync/pkg/platform/audit/publishers/compliance"
	"regsync/pkg/platform/audit/publishers/stream"
	"regsync/pkg/platform/audit/store/memory"
	"regsync/pkg/platform/audit/store/postgres"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	regMetrics := metrics.NewWithRegistry(reg)

	table, err := config.LoadSourcesFile(cfg.Sources.File)
	if err != nil {
		return err
	}
	registry, err := sources.FromConfig(cfg.Sources, table)
	if err != nil {
		return fmt.Errorf("configure sources: %w", err)
	}
	reconciler := reconcile.New(registry,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(regMetrics),
		reconcile.WithFetchTimeout(cfg.Sources.FetchTimeout),
	)

	deps := &dependencies{}
	defer deps.close()

	auditStore, auditReader, err := buildAudit(ctx, cfg, log, deps)
	if err != nil {
		return err
	}
	publisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetricsWithRegistry(reg)),
	)

	statusClient, err := statusupdate.NewHTTPClient(cfg.Status.BaseURL,
		statusupdate.WithAuthToken(cfg.Status.AuthToken),
		statusupdate.WithTimeout(cfg.Status.Timeout),
	)
	if err != nil {
		return err
	}
	updater := statusupdate.New(statusClient,
		statusupdate.WithAuditor(publisher),
		statusupdate.WithLogger(log),
		statusupdate.WithMetrics(regMetrics),
	)

	limiter, err := buildLimiter(ctx, cfg, log, reg, deps)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	h := handler.New(reconciler, updater, log,
		handler.WithAuditor(publisher),
		handler.WithAuditReader(auditReader),
	)

	router := newRouter(routerDeps{
		handler:    h,
		logger:     log,
		authn:      jwtService,
		adminToken: cfg.AdminToken,
		limiter:    limiter,
		registry:   reg,
		health:     deps.health,
	})

	srv := httpserver.New(cfg.Addr, router,
		httpserver.WithWriteTimeout(cfg.Sources.FetchTimeout+30*time.Second),
	)
	log.Info("starting regsync", "addr", cfg.Addr, "sources", registry.Len())
	if err := httpserver.Run(ctx, srv, shutdownTimeout); err != nil {
		return err
	}
	log.Info("shut down")
	return nil
}

// dependencies tracks optional backing services so they can be health
// checked and closed on shutdown.
type dependencies struct {
	db     *sql.DB
	redis  *redisclient.Client
	stream *stream.Sink
}

func (d *dependencies) health(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if d.db != nil {
		checks["postgres"] = d.db.PingContext(ctx)
	}
	if d.redis != nil {
		checks["redis"] = d.redis.Health(ctx)
	}
	if d.stream != nil {
		checks["kafka"] = d.stream.Ping(ctx)
	}
	return checks
}

func (d *dependencies) close() {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

// buildAudit picks Postgres when DATABASE_URL is set and memory otherwise, and
// tees to Kafka when brokers are configured.
func buildAudit(ctx context.Context, cfg config.Server, log *slog.Logger, deps *dependencies) (audit.Store, audit.Reader, error) {
	var (
		primary audit.Store
		reader  audit.Reader
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		deps.db = db
		store := postgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		primary, reader = store, store
	} else {
		log.Warn("DATABASE_URL not set, audit events are kept in memory")
		store := memory.NewInMemoryStore()
		primary, reader = store, store
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return primary, reader, nil
	}
	sink, err := stream.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, stream.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	deps.stream = sink
	if err := sink.EnsureTopic(ctx); err != nil {
		log.Warn("audit topic bootstrap failed", "topic", cfg.Kafka.Topic, "error", err)
	}
	return audit.Tee(primary, sink), reader, nil
}

// buildLimiter uses Redis when configured; the limiter falls back to its
// in-memory store when Redis is absent or failing.
func buildLimiter(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, deps *dependencies) (*rlmw.Middleware, error) {
	limits := map[rlmodels.EndpointClass]rlmodels.Limit{
		rlmodels.ClassRead:  {Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		rlmodels.ClassWrite: {Requests: max(cfg.RateLimit.Requests/4, 1), Window: cfg.RateLimit.Window},
	}

	var primary rlmw.BucketStore
	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		deps.redis = client
		primary = bucket.NewRedisBucketStore(client.Client)
	}

	limiter := rlmw.NewLimiter(primary, limits,
		rlmw.WithLimiterMetrics(rlmetrics.NewWithRegistry(reg)),
		rlmw.WithLimiterLogger(log),
	)
	return rlmw.New(limiter, log, rlmw.WithDisabled(!cfg.RateLimit.Enabled)), nil
}
