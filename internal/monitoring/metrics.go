package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	TargetsTotal        *prometheus.CounterVec
	ExtractDuration     prometheus.Histogram
	DiscoveredTotal     prometheus.Counter
	DiscoveryDegraded   prometheus.Counter
	DiscoveryPageErrors prometheus.Counter
	StoreErrorsTotal    *prometheus.CounterVec
	SeedsInQueue        prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvest_runs_total",
			Help: "Total number of harvest runs.",
		}, []string{"status"}), // completed, failed, skipped
		TargetsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvest_targets_total",
			Help: "Total number of extraction outcomes.",
		}, []string{"outcome", "reason"}),
		ExtractDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvest_extract_duration_seconds",
			Help:    "Duration of single target extractions.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}),
		DiscoveredTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "harvest_discovered_candidates_total",
			Help: "Candidates found on search listings before deduplication.",
		}),
		DiscoveryDegraded: f.NewCounter(prometheus.CounterOpts{
			Name: "harvest_discovery_degraded_total",
			Help: "Search listings whose page count could not be read.",
		}),
		DiscoveryPageErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "harvest_discovery_page_errors_total",
			Help: "Search listing pages that failed to load.",
		}),
		StoreErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harvest_store_errors_total",
			Help: "Errors persisting harvest results.",
		}, []string{"store"}),
		SeedsInQueue: f.NewGauge(prometheus.GaugeOpts{
			Name: "harvest_seeds_in_queue",
			Help: "Current number of seed entries waiting in the queue.",
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveTarget(outcome, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.TargetsTotal.WithLabelValues(outcome, reason).Inc()
	m.ExtractDuration.Observe(d.Seconds())
}

func (m *Metrics) AddDiscovered(n int) {
	if m == nil {
		return
	}
	m.DiscoveredTotal.Add(float64(n))
}

func (m *Metrics) IncDiscoveryDegraded() {
	if m == nil {
		return
	}
	m.DiscoveryDegraded.Inc()
}

func (m *Metrics) IncDiscoveryPageErrors() {
	if m == nil {
		return
	}
	m.DiscoveryPageErrors.Inc()
}

func (m *Metrics) IncStoreErrors(store string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(store).Inc()
}

func (m *Metrics) SetSeedsInQueue(n int64) {
	if m == nil {
		return
	}
	m.SeedsInQueue.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
