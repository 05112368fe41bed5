package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/config"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/exporter"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/exposition"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/scraper"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/telemetry"
)

// Collector produces one rendered scrape. *exporter.Pipeline implements it.
type Collector interface {
	Collect(ctx context.Context) (*exporter.Outcome, error)
}

// Handler is the HTTP handler for the exporter's endpoints.
type Handler struct {
	collector Collector
	metrics   *telemetry.Metrics
	upstream  string
	mux       *http.ServeMux
}

// New creates a Handler serving cfg.MetricsPath from c and registers the
// telemetry and liveness routes. tm may be nil, which disables the telemetry
// path. Any other path is answered with 404.
func New(c Collector, cfg *config.Config, tm *telemetry.Metrics) http.Handler {
	h := &Handler{
		collector: c,
		metrics:   tm,
		upstream:  cfg.Upstream.Redacted(),
		mux:       http.NewServeMux(),
	}

	h.mux.HandleFunc(cfg.MetricsPath, h.scrape)
	h.mux.HandleFunc(config.HealthPath, h.healthz)
	if tm != nil {
		h.mux.Handle(cfg.TelemetryPath, getOnly(tm.Handler()))
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// scrape serves GET <metrics_path>: one upstream fetch, one exposition body.
func (h *Handler) scrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	start := time.Now()
	out, err := h.collector.Collect(r.Context())
	if err != nil {
		h.fail(w, r, err, time.Since(start))
		return
	}

	for _, f := range out.Failures {
		slog.Warn("api: rule produced no sample", "rule", f.Rule, "err", f.Err)
		if h.metrics != nil {
			h.metrics.RuleFailed(f.Rule)
		}
	}
	h.observe(telemetry.OutcomeSuccess, out.Duration)
	slog.Debug("api: scrape served", "samples", out.Samples, "duration", out.Duration)

	w.Header().Set("Content-Type", exposition.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Body) //nolint:errcheck
}

// healthz reports liveness without touching the console.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n")) //nolint:errcheck
}

// --- helpers ----------------------------------------------------------------

// fail answers a failed scrape. No metrics are written on this path.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, d time.Duration) {
	if r.Context().Err() != nil {
		slog.Debug("api: client went away during scrape", "upstream", h.upstream, "err", err)
		h.observe(telemetry.OutcomeCanceled, d)
		return
	}

	code, outcome := classify(err)
	slog.Error("api: scrape failed", "upstream", h.upstream, "status", code, "err", err)
	h.observe(outcome, d)
	http.Error(w, fmt.Sprintf("scrape of %s failed: %v", h.upstream, err), code)
}

func (h *Handler) observe(outcome string, d time.Duration) {
	if h.metrics != nil {
		h.metrics.ObserveScrape(outcome, d)
	}
}

// classify maps a pipeline error to a response status and telemetry outcome.
func classify(err error) (int, string) {
	var fe *scraper.FetchError
	if errors.As(err, &fe) && fe.Kind == scraper.Timeout {
		return http.StatusGatewayTimeout, telemetry.OutcomeTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, telemetry.OutcomeTimeout
	}

	var se *exporter.StageError
	if errors.As(err, &se) && se.Stage == exporter.StageFormat {
		return http.StatusInternalServerError, telemetry.OutcomeInternal
	}
	// Refused, non-2xx, transport, empty and undecodable pages.
	return http.StatusBadGateway, telemetry.OutcomeUpstream
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
