package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/romay-erp/romay/internal/auth"
	"github.com/romay-erp/romay/internal/capability"
	caphttp "github.com/romay-erp/romay/internal/capability/http"
	"github.com/romay-erp/romay/internal/guard"
	"github.com/romay-erp/romay/internal/observability"
	"github.com/romay-erp/romay/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Guard             *guard.Guard
	AuthHandler       *auth.Handler
	CapabilityHandler *caphttp.Handler
	JobsHandler       *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Romay defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.Guard.Protect)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.Guard.Protect)
		params.CapabilityHandler.MountRoutes(r)
	})

	// The dashboard route space: every role's section lives under its own
	// segment, guarded and role-checked.
	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Protect)
		r.Use(params.Guard.RequireRolePrefix)
		for _, role := range capability.Roles() {
			prefix := "/" + role.Segment()
			r.Get(prefix, params.CapabilityHandler.Bootstrap)
			r.Get(prefix+"/*", params.CapabilityHandler.Bootstrap)
		}
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.Guard.Protect)
			r.Use(params.Guard.RequireRole(capability.RoleCEO))
			params.JobsHandler.MountRoutes(r)
		})
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
