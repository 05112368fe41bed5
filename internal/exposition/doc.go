// Package exposition renders extracted samples as Prometheus text.
//
// Samples become client_model MetricFamily values (one per metric name, in
// first-seen order) that prometheus/common/expfmt writes out, so escaping,
// HELP/TYPE lines and brace omission for label-less series follow the
// reference encoder. The i2pd_webconsole_exporter_version_info gauge is
// always the last family.
package exposition
