package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fog"

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInflight prometheus.Gauge

	scorecardRequests *prometheus.CounterVec
	scorecardFallback *prometheus.CounterVec
	scorecardRender   *prometheus.HistogramVec

	newsletterReconcile *prometheus.CounterVec
	newsletterSubscribe *prometheus.CounterVec
	rateLimit           *prometheus.CounterVec
	loginEvents         *prometheus.CounterVec

	publishRuns      *prometheus.CounterVec
	patentsPublished prometheus.Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil before Init.
func Current() *Metrics {
	return instance
}

// Init creates the process-wide metrics once.
func Init() *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
	})
	return instance
}

// NewMetrics registers all collectors on reg. Tests pass a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpInflight: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "Requests currently being served.",
		}),
		scorecardRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "requests_total",
			Help:      "Scorecard image requests by format and cache result.",
		}, []string{"format", "result"}),
		scorecardFallback: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "fallback_total",
			Help:      "Fallback images served, by reason.",
		}, []string{"reason"}),
		scorecardRender: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a scorecard.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"format"}),
		newsletterReconcile: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "newsletter",
			Name:      "reconcile_total",
			Help:      "Login reconcile outcomes.",
		}, []string{"outcome"}),
		newsletterSubscribe: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "newsletter",
			Name:      "subscribe_total",
			Help:      "Subscribe form results.",
		}, []string{"result"}),
		rateLimit: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limiter decisions by limiter.",
		}, []string{"limiter", "decision"}),
		loginEvents: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_events_total",
			Help:      "Login event emission results.",
		}, []string{"result"}),
		publishRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "runs_total",
			Help:      "Publish job runs by result.",
		}, []string{"result"}),
		patentsPublished: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "patents_total",
			Help:      "Patents moved from scheduled to published.",
		}),
	}
}

// RegisterDB exports database/sql pool statistics.
func (m *Metrics) RegisterDB(name string, db *sql.DB) {
	if m == nil || db == nil {
		return
	}
	_ = m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.httpInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.httpInflight.Dec()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ScorecardRequest(format string, fromCache bool) {
	if m == nil {
		return
	}
	result := "miss"
	if fromCache {
		result = "hit"
	}
	m.scorecardRequests.WithLabelValues(format, result).Inc()
}

func (m *Metrics) ScorecardFallback(reason string) {
	if m == nil {
		return
	}
	m.scorecardFallback.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRender(format string, d time.Duration) {
	if m == nil {
		return
	}
	m.scorecardRender.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) NewsletterReconcile(outcome string) {
	if m == nil {
		return
	}
	m.newsletterReconcile.WithLabelValues(outcome).Inc()
}

func (m *Metrics) NewsletterSubscribe(result string) {
	if m == nil {
		return
	}
	m.newsletterSubscribe.WithLabelValues(result).Inc()
}

func (m *Metrics) RateLimitDecision(limiter, decision string) {
	if m == nil {
		return
	}
	m.rateLimit.WithLabelValues(limiter, decision).Inc()
}

func (m *Metrics) LoginEvent(result string) {
	if m == nil {
		return
	}
	m.loginEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) PublishRun(result string, published int) {
	if m == nil {
		return
	}
	m.publishRuns.WithLabelValues(result).Inc()
	if published > 0 {
		m.patentsPublished.Add(float64(published))
	}
}
