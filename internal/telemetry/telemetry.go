package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape outcomes recorded in i2pd_exporter_scrapes_total.
const (
	OutcomeSuccess  = "success"
	OutcomeTimeout  = "timeout"
	OutcomeUpstream = "upstream_error"
	OutcomeCanceled = "canceled"
	OutcomeInternal = "internal_error"
)

// Metrics holds the exporter's own counters on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	scrapes      *prometheus.CounterVec
	duration     prometheus.Histogram
	ruleFailures *prometheus.CounterVec
}

// New registers the scrape metrics plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		scrapes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "i2pd_exporter_scrapes_total",
			Help: "Scrapes of the web console by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "i2pd_exporter_scrape_duration_seconds",
			Help:    "Time spent fetching and converting the web console page.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		ruleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "i2pd_exporter_rule_failures_total",
			Help: "Extraction rules whose matched value could not be parsed.",
		}, []string{"rule"}),
	}
}

// ObserveScrape records one finished scrape.
func (m *Metrics) ObserveScrape(outcome string, d time.Duration) {
	m.scrapes.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

// RuleFailed counts one malformed value for rule.
func (m *Metrics) RuleFailed(rule string) {
	m.ruleFailures.WithLabelValues(rule).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
