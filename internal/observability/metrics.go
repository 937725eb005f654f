package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/articlerec/internal/platform/logger"
)

// Metrics holds the service collectors. All methods are safe on a nil receiver
// so call sites never need to check whether metrics are enabled.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	signalLatency    *prometheus.HistogramVec
	signalCandidates *prometheus.HistogramVec
	rankedResults    *prometheus.HistogramVec

	storeCalls   *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec

	poolSize     prometheus.Gauge
	poolInvalid  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide collectors once and registers the Go runtime
// and process collectors alongside them.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics()
		instance.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// NewMetrics returns collectors bound to a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlerec_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "articlerec_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "articlerec_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		signalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "articlerec_signal_duration_seconds",
			Help:    "Signal producer latency in seconds by signal/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"signal", "status"}),
		signalCandidates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "articlerec_signal_candidates",
			Help:    "Candidates produced per signal call.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}, []string{"signal"}),
		rankedResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "articlerec_ranked_results",
			Help:    "Records returned per aggregation by operation.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"operation"}),
		storeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlerec_store_calls_total",
			Help: "Candidate store reads by operation/status.",
		}, []string{"op", "status"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "articlerec_store_call_duration_seconds",
			Help:    "Candidate store read latency in seconds by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "articlerec_store_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "articlerec_embedding_pool_size",
			Help: "Valid embeddings in the most recently built pool.",
		}),
		poolInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlerec_embedding_invalid_total",
			Help: "Works excluded from the embedding pool by reason.",
		}, []string{"reason"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlerec_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.signalLatency, m.signalCandidates, m.rankedResults,
		m.storeCalls, m.storeLatency, m.breakerState,
		m.poolSize, m.poolInvalid, m.cacheLookups,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ObserveSignal(signal string, candidates int, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.signalLatency.WithLabelValues(signal, statusOf(err)).Observe(dur.Seconds())
	if err == nil {
		m.signalCandidates.WithLabelValues(signal).Observe(float64(candidates))
	}
}

func (m *Metrics) ObserveRanked(operation string, n int) {
	if m == nil {
		return
	}
	m.rankedResults.WithLabelValues(operation).Observe(float64(n))
}

func (m *Metrics) ObserveStoreCall(op string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeCalls.WithLabelValues(op, statusOf(err)).Inc()
	m.storeLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) ObservePool(valid int, invalidReasons []string) {
	if m == nil {
		return
	}
	m.poolSize.Set(float64(valid))
	for _, r := range invalidReasons {
		m.poolInvalid.WithLabelValues(r).Inc()
	}
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
