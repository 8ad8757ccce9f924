// Package monitoring exposes Prometheus metrics for the parsing pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "estateparser"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SitesParsedTotal       *prometheus.CounterVec
	ListingsExtractedTotal prometheus.Counter
	ErrorsTotal            *prometheus.CounterVec
	SiteParseDuration      *prometheus.HistogramVec
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
}

// NewMetrics registers the metric set with reg. Passing nil registers with the
// default registerer; tests pass their own registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SitesParsedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sites_parsed_total",
			Help:      "Number of sites processed, by outcome",
		}, []string{"status"}), // 'ok', 'fetch_failed', 'no_objects', 'skipped'
		ListingsExtractedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_extracted_total",
			Help:      "Number of listings extracted across all sites",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of errors encountered, by type",
		}, []string{"type"}), // e.g. 'fetch_failed', 'bad_selector', 'db_save_failed'
		SiteParseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "site_parse_duration_seconds",
			Help:      "Time spent fetching and parsing one site",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served, by route and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncSitesParsed(status string) {
	m.SitesParsedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddListingsExtracted(n int) {
	m.ListingsExtractedTotal.Add(float64(n))
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) ObserveSiteParse(backend string, d time.Duration) {
	m.SiteParseDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
