package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/reviewhub/internal/service"
	"github.com/utafrali/reviewhub/pkg/health"
	"github.com/utafrali/reviewhub/pkg/middleware"
)

// RouterDeps bundles the dependencies the router wires together.
type RouterDeps struct {
	Ingest     *service.IngestService
	Reviews    *service.ReviewService
	Moderation *service.ModerationService
	Analytics  *service.AnalyticsService
	Health     *health.Handler
	Logger     *slog.Logger

	// IngestLimiter optionally wraps the ingestion trigger endpoint,
	// e.g. with the Redis-backed rate limiter. Nil disables limiting.
	IngestLimiter func(http.Handler) http.Handler

	// PprofCIDRs enables the /debug/pprof endpoints for the given CIDR
	// allowlist when non-empty.
	PprofCIDRs []string
}

// NewRouter creates a chi router with all service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Tracing("reviewhub"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("reviewhub"))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health and metrics endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if len(deps.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, deps.PprofCIDRs, deps.Logger)
	}

	reviewHandler := NewReviewHandler(deps.Ingest, deps.Reviews, deps.Logger)
	adminHandler := NewAdminHandler(deps.Moderation, deps.Reviews, deps.Logger)
	analyticsHandler := NewAnalyticsHandler(deps.Analytics, deps.Logger)

	r.Route("/api/v1/products/{productId}", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			if deps.IngestLimiter != nil {
				r.Use(deps.IngestLimiter)
			}
			r.Post("/ingest", reviewHandler.Ingest)
		})

		r.Get("/reviews", reviewHandler.ListReviews)
		r.Get("/reviews/stats", reviewHandler.Stats)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/reviews", adminHandler.Queue)
		r.Patch("/reviews/{id}", adminHandler.Update)
		r.Delete("/reviews/{id}", adminHandler.Delete)
		r.Delete("/products/{productId}/reviews", adminHandler.DeleteByProduct)
	})

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Get("/overview", analyticsHandler.Overview)
	})

	return r
}
