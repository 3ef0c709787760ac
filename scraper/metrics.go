package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry               *prometheus.Registry
	RequestsTotal          *prometheus.CounterVec
	RequestDuration        prometheus.Histogram
	RetriesTotal           prometheus.Counter
	ErrorsTotal            *prometheus.CounterVec
	CacheHitsTotal         prometheus.Counter
	RecordsExtractedTotal  *prometheus.CounterVec
	CandidatesSkippedTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total number of retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_cache_hits_total",
			Help: "Pages served from the in-memory page cache.",
		},
	)
	extracted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Complete records extracted per category.",
		},
		[]string{"category"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_candidates_skipped_total",
			Help: "Candidates that did not become records, by category and reason.",
		},
		[]string{"category", "reason"},
	)

	registry.MustRegister(requests, requestDuration, retries, errorsTotal, cacheHits, extracted, skipped)

	return &Metrics{
		Registry:               registry,
		RequestsTotal:          requests,
		RequestDuration:        requestDuration,
		RetriesTotal:           retries,
		ErrorsTotal:            errorsTotal,
		CacheHitsTotal:         cacheHits,
		RecordsExtractedTotal:  extracted,
		CandidatesSkippedTotal: skipped,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncCacheHit increments the page cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CandidateSkipped records a candidate dropped during extraction.
func (m *Metrics) CandidateSkipped(category models.Category, reason string) {
	if m == nil {
		return
	}
	m.CandidatesSkippedTotal.WithLabelValues(string(category), reason).Inc()
}

// RecordsExtracted adds count accepted records for category.
func (m *Metrics) RecordsExtracted(category models.Category, count int) {
	if m == nil {
		return
	}
	m.RecordsExtractedTotal.WithLabelValues(string(category)).Add(float64(count))
}
