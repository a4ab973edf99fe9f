package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Prometheus struct {
	switches        *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	useCaseTotal    *prometheus.CounterVec
	useCaseDuration *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	staleDiscards   *prometheus.CounterVec
}

// NewPrometheusMetrics registers the application vectors on reg. Runtime
// collectors belong to whoever owns the registry.
func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	labels := prometheus.Labels{"service": serviceName}
	m := &Prometheus{
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "repository_switch_total",
			Help:        "Repository type switches per domain and target type.",
			ConstLabels: labels,
		}, []string{"domain", "type"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "optimistic_mutations_total",
			Help:        "Optimistic mutations by outcome (confirmed, rolled_back).",
			ConstLabels: labels,
		}, []string{"domain", "kind", "outcome"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "path", "status_code"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "query_cache_hits_total",
			Help:        "Query cache hits.",
			ConstLabels: labels,
		}, []string{"domain"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "query_cache_misses_total",
			Help:        "Query cache misses.",
			ConstLabels: labels,
		}, []string{"domain"}),
		staleDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "query_stale_reads_discarded_total",
			Help:        "In-flight reads discarded because the repository type changed.",
			ConstLabels: labels,
		}, []string{"domain"}),
	}

	reg.MustRegister(
		m.switches,
		m.mutations,
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpDuration,
		m.cacheHits,
		m.cacheMisses,
		m.staleDiscards,
	)

	return m
}

func (p *Prometheus) RecordRepositorySwitch(domain, repositoryType string) {
	p.switches.WithLabelValues(domain, repositoryType).Inc()
}

func (p *Prometheus) RecordMutation(domain, kind, outcome string) {
	p.mutations.WithLabelValues(domain, kind, outcome).Inc()
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}

func (p *Prometheus) IncCacheHit(domain string) {
	p.cacheHits.WithLabelValues(domain).Inc()
}

func (p *Prometheus) IncCacheMiss(domain string) {
	p.cacheMisses.WithLabelValues(domain).Inc()
}

func (p *Prometheus) IncStaleReadDiscarded(domain string) {
	p.staleDiscards.WithLabelValues(domain).Inc()
}
