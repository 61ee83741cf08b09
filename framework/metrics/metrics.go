// Package metrics provides Prometheus instrumentation for the container and
// the HTTP router.
//
// A Collector is handed to the container as an Observer, so every Create is
// counted and timed:
//
//	m := metrics.NewCollector("app")
//	app.Observe(m)
//	router.Use(m.Middleware())
//	router.Get("/metrics", m.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Collector owns a private Prometheus registry holding the container and
// HTTP metrics.
type Collector struct {
	registry *prometheus.Registry

	// Resolutions counts Create calls by type name and outcome.
	Resolutions *prometheus.CounterVec

	// ResolutionDuration tracks how long each Create takes, nested ones included.
	ResolutionDuration *prometheus.HistogramVec

	// CreatorsBuilt counts creators cached by the container.
	CreatorsBuilt *prometheus.CounterVec

	// RequestDuration tracks HTTP request latency by method, route and status.
	RequestDuration *prometheus.HistogramVec

	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal *prometheus.CounterVec

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight prometheus.Gauge
}

// NewCollector creates a Collector whose metrics are prefixed by namespace.
// Go runtime and process metrics are registered alongside them.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "resolutions_total",
				Help:      "Total container resolutions.",
			},
			[]string{"type", "outcome"}, // "success" | "failure"
		),
		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "resolution_duration_seconds",
				Help:      "Duration of container resolutions in seconds.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"type"},
		),
		CreatorsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "creators_built_total",
				Help:      "Total creators built and cached by the container.",
			},
			[]string{"type"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		RequestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Resolutions,
		c.ResolutionDuration,
		c.CreatorsBuilt,
		c.RequestDuration,
		c.RequestTotal,
		c.RequestInFlight,
	)
	return c
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Register adds a custom collector to the registry.
func (c *Collector) Register(col prometheus.Collector) error {
	return c.registry.Register(col)
}

// ── container.Observer ────────────────────────────────────────────────────────

// CreatorBuilt implements container.Observer.
func (c *Collector) CreatorBuilt(name string) {
	c.CreatorsBuilt.WithLabelValues(name).Inc()
}

// Resolved implements container.Observer.
func (c *Collector) Resolved(name string, elapsed time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	c.Resolutions.WithLabelValues(name, outcome).Inc()
	c.ResolutionDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration, total and in-flight metrics for every request.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path // raw path; normalize in high-cardinality APIs

			c.RequestInFlight.Inc()
			defer c.RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			c.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			c.RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler exposes the registry for Prometheus to scrape.
func (c *Collector) Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
