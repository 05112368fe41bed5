// Package api implements the exporter's HTTP surface.
//
// Routes:
//
//	GET <metrics_path>    one console fetch rendered as Prometheus text
//	GET <telemetry_path>  exporter's own Go, process and scrape metrics
//	GET /healthz          liveness, never touches the console
//
// Other methods get 405 and other paths 404. A failed scrape answers 504
// when the console timed out and 502 otherwise, with a one-line text/plain
// message and no metrics. If the client disconnects first, nothing is
// written.
package api
