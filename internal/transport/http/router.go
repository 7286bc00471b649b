// Package httptransport assembles the chi router: middleware chain, public
// identity endpoints, the role-gated patient and caretaker groups, health
// and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboardhandler "medtrack/internal/dashboard/handler"
	identityhandler "medtrack/internal/identity/handler"
	identitymodels "medtrack/internal/identity/models"
	medicationhandler "medtrack/internal/medication/handler"
	"medtrack/internal/platform/metrics"
	"medtrack/internal/platform/middleware"
	"medtrack/pkg/platform/httputil"
)

// HealthChecker reports readiness of a backing store. Nil checkers are
// skipped so the memory-backed configuration stays healthy by construction.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Identity   *identityhandler.Handler
	Medication *medicationhandler.Handler
	Dashboard  *dashboardhandler.Handler
	Sessions   middleware.SessionVerifier
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry
	Health     map[string]HealthChecker
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	deps.Identity.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Sessions, deps.Logger))
		r.Use(middleware.RequireRole(identitymodels.RolePatient.String(), deps.Logger))
		deps.Medication.Register(r)
		deps.Dashboard.RegisterPatient(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Sessions, deps.Logger))
		r.Use(middleware.RequireRole(identitymodels.RoleCaretaker.String(), deps.Logger))
		deps.Dashboard.RegisterCaretaker(r)
	})

	r.Get("/healthz", handleHealth(deps.Health))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
