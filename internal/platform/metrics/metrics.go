// Package metrics holds the Prometheus instruments for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is created once at startup and injected; New registers on the
// given registerer so tests can use a private registry.
type Metrics struct {
	UsersCreated     *prometheus.CounterVec
	PatientsPaired   prometheus.Counter
	Logins           *prometheus.CounterVec
	MedicationsAdded prometheus.Counter
	DosesMarked      prometheus.Counter
	DaysBackfilled   prometheus.Counter
	DashboardsServed *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medtrack_users_created_total",
			Help: "Total users created, by role.",
		}, []string{"role"}),
		PatientsPaired: factory.NewCounter(prometheus.CounterOpts{
			Name: "medtrack_patients_paired_total",
			Help: "Total patients bound to a caretaker at signup.",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medtrack_logins_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
		MedicationsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medtrack_medications_added_total",
			Help: "Total medications registered by patients.",
		}),
		DosesMarked: factory.NewCounter(prometheus.CounterOpts{
			Name: "medtrack_doses_marked_total",
			Help: "Total explicit taken marks.",
		}),
		DaysBackfilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "medtrack_days_backfilled_total",
			Help: "Total missed rows materialized by backfill.",
		}),
		DashboardsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medtrack_dashboards_served_total",
			Help: "Dashboard responses, by role.",
		}, []string{"role"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medtrack_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveRequest records one HTTP request's latency.
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
