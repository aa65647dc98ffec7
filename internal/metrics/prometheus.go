// ABOUTME: Prometheus implementation of the metrics Recorder
// ABOUTME: Owns a private registry exposed through an HTTP handler
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records engine and API metrics into a dedicated registry
type Prometheus struct {
	registry        *prometheus.Registry
	cacheLookups    *prometheus.CounterVec
	cacheEvictions  prometheus.Counter
	providerCalls   *prometheus.CounterVec
	providerSeconds *prometheus.HistogramVec
	analysisSeconds *prometheus.HistogramVec
	suggestions     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpSeconds     *prometheus.HistogramVec
}

// NewPrometheus creates and registers all collectors
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		}, []string{"result"}),
		cacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_embedding_cache_evictions_total",
			Help: "Embedding cache entries evicted for capacity or age",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_embedding_provider_calls_total",
			Help: "External embedding calls by outcome",
		}, []string{"outcome"}),
		providerSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvas_embedding_provider_seconds",
			Help:    "External embedding call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		analysisSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvas_analysis_seconds",
			Help:    "Suggestion pipeline duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_suggestions_total",
			Help: "Suggestions returned to callers",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvas_http_request_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	p.registry.MustRegister(
		p.cacheLookups, p.cacheEvictions,
		p.providerCalls, p.providerSeconds,
		p.analysisSeconds, p.suggestions,
		p.httpRequests, p.httpSeconds,
	)
	return p
}

func (p *Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

func (p *Prometheus) CacheEviction() {
	p.cacheEvictions.Inc()
}

func (p *Prometheus) ProviderCall(outcome string, seconds float64) {
	p.providerCalls.WithLabelValues(outcome).Inc()
	p.providerSeconds.WithLabelValues(outcome).Observe(seconds)
}

func (p *Prometheus) Analysis(kind string, seconds float64, suggestions int) {
	p.analysisSeconds.WithLabelValues(kind).Observe(seconds)
	p.suggestions.WithLabelValues(kind).Add(float64(suggestions))
}

func (p *Prometheus) HTTPRequest(route, method string, status int, seconds float64) {
	p.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.httpSeconds.WithLabelValues(route, method).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
