// Package config resolves the exporter configuration.
//
// Top-level types:
//   - Config: listen_address, metrics_path, telemetry_path, log_level, upstream
//   - Upstream: url, timeout, auth, tls of the i2pd web console
//   - AuthConfig: basic-auth username and password_env; Password() resolves
//     the password from the environment
//
// Load(path) starts from defaults (0.0.0.0:9700, /metrics, /exporter-metrics,
// info, http://127.0.0.1:7070, 60s), overlays the YAML file when path is
// non-empty, then the environment (I2PD_WEB_CONSOLE, METRICS_LISTEN_ADDR,
// HTTP_TIMEOUT_SECONDS, LOG_LEVEL), then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to notice edits of the file. The
// exporter does not hot-swap its configuration; Changes reports which keys a
// restart would apply.
package config
