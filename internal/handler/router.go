package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/middleware"
	"github.com/andes-trip-manager/backend/internal/ratelimit"
)

// RouterConfig carries the cross-cutting pieces NewRouter wires around the
// handlers.
type RouterConfig struct {
	Verifier *auth.Verifier
	// RateLimiter throttles the import routes per user. Nil disables it.
	RateLimiter *ratelimit.KeyedRateLimiter
	// MaxImportBytes bounds import and restore bodies. Zero disables it.
	MaxImportBytes int64
	CORSOrigins    []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewRouter mounts every route on a chi router.
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS.
// Everything except /healthz, /openapi.yaml and /metrics requires a bearer token.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthHandler(cfg.Verifier, s.logger))

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Get("/{id}", s.GetTrip)
			r.Delete("/{id}", s.DeleteTrip)
			r.Get("/{id}/export", s.ExportTrip)
		})
		r.Get("/export", s.ExportTrips)

		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(middleware.NewRateLimitHandler(cfg.RateLimiter))
			}
			if cfg.MaxImportBytes > 0 {
				r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxImportBytes))
			}
			r.Post("/import/validate", s.ValidateImport)
			r.Post("/import", s.ImportTrips)
			r.Post("/restore", s.RestoreBackup)
		})

		r.Route("/diagnostics/operations", func(r chi.Router) {
			r.Get("/", s.ListOperations)
			r.Get("/export", s.ExportOperations)
			r.Delete("/", s.ClearOperations)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Get("/resources", s.ListResources)
			r.Get("/resources/read", s.ReadResource)
			r.Get("/tools", s.ListTools)
			r.Post("/tools/{name}", s.CallTool)
		})
	})
	return r
}
