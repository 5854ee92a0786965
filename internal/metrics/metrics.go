// Package metrics exposes Prometheus counters for tracker activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Registrations   prometheus.Counter
	Logins          *prometheus.CounterVec
	DayUpdates      *prometheus.CounterVec
	LockRejections  *prometheus.CounterVec
	FootnoteWrites  prometheus.Counter
	TagMutations    *prometheus.CounterVec
	CSRFRejections  prometheus.Counter
	RateLimited     prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "grimoire_registrations_total",
			Help: "Total number of accounts created",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grimoire_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		DayUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grimoire_day_updates_total",
			Help: "Full-field day updates by result",
		}, []string{"result"}),
		LockRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grimoire_lock_rejections_total",
			Help: "Day updates refused because the date was not active, by lock state",
		}, []string{"state"}),
		FootnoteWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "grimoire_footnote_writes_total",
			Help: "Total number of footnote saves",
		}),
		TagMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grimoire_tag_mutations_total",
			Help: "Tag registry changes by operation",
		}, []string{"op"}),
		CSRFRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "grimoire_csrf_rejections_total",
			Help: "Requests refused for a missing or wrong CSRF token",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "grimoire_rate_limited_total",
			Help: "Requests refused by the login rate limiter",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grimoire_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
