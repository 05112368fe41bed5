package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file and the
// environment.
const (
	DefaultListenAddress = "0.0.0.0:9700"
	DefaultMetricsPath   = "/metrics"
	DefaultTelemetryPath = "/exporter-metrics"
	DefaultLogLevel      = "info"
	DefaultUpstreamURL   = "http://127.0.0.1:7070"
	DefaultTimeout       = 60 * time.Second

	// HealthPath is the fixed liveness route.
	HealthPath = "/healthz"
)

// Environment variables that override file values. The names match those
// understood by earlier releases of the exporter.
const (
	EnvUpstreamURL    = "I2PD_WEB_CONSOLE"
	EnvListenAddress  = "METRICS_LISTEN_ADDR"
	EnvTimeoutSeconds = "HTTP_TIMEOUT_SECONDS"
	EnvLogLevel       = "LOG_LEVEL"
)

// Config is the resolved exporter configuration. It is immutable once Load
// returns and is shared read-only by every scrape.
type Config struct {
	// ListenAddress is the host:port the metrics endpoint binds to.
	ListenAddress string `yaml:"listen_address"`

	// MetricsPath serves the i2pd metrics, one upstream fetch per request.
	MetricsPath string `yaml:"metrics_path"`

	// TelemetryPath serves the exporter's own Go/process/scrape metrics.
	TelemetryPath string `yaml:"telemetry_path"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Upstream describes the i2pd web console being scraped.
	Upstream Upstream `yaml:"upstream"`

	// Version is the exporter build version. It is set by the binary, never
	// read from the file.
	Version string `yaml:"-"`
}

// Upstream describes the i2pd web console.
type Upstream struct {
	// URL is the full address of the console main page.
	URL string `yaml:"url"`

	// Timeout bounds one whole fetch: connect, headers and body.
	Timeout time.Duration `yaml:"timeout"`

	// Auth holds optional basic-auth credentials (i2pd http.auth).
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options for an https console.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig holds basic-auth credentials for the console.
type AuthConfig struct {
	// Username is the literal username (safe to store in config).
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`
}

// Redacted returns URL with any userinfo password masked, for logs and
// error messages.
func (u Upstream) Redacted() string {
	parsed, err := url.Parse(u.URL)
	if err != nil {
		return "<invalid upstream url>"
	}
	return parsed.Redacted()
}

// Enabled reports whether basic auth should be sent.
func (a AuthConfig) Enabled() bool { return a.Username != "" }

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for the console.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// i2pd consoles behind a reverse proxy often use self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and environment overrides, in that order, then
// validates it.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		MetricsPath:   DefaultMetricsPath,
		TelemetryPath: DefaultTelemetryPath,
		LogLevel:      DefaultLogLevel,
		Upstream: Upstream{
			URL:     DefaultUpstreamURL,
			Timeout: DefaultTimeout,
		},
	}
}

// applyEnv overlays environment variables on cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUpstreamURL); ok && v != "" {
		cfg.Upstream.URL = v
	}
	if v, ok := lookup(EnvListenAddress); ok && v != "" {
		cfg.ListenAddress = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvTimeoutSeconds); ok && v != "" {
		secs, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%s=%q: want whole seconds", EnvTimeoutSeconds, v)
		}
		cfg.Upstream.Timeout = time.Duration(secs) * time.Second
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	// Messages use the redacted URL; userinfo may carry a password.
	u, err := url.Parse(cfg.Upstream.URL)
	if err != nil {
		return fmt.Errorf("upstream.url is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.url %q: scheme must be http or https", u.Redacted())
	}
	if u.Host == "" {
		return fmt.Errorf("upstream.url %q: host is required", u.Redacted())
	}
	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	if cfg.Upstream.Auth.PasswordEnv != "" && !cfg.Upstream.Auth.Enabled() {
		return fmt.Errorf("upstream.auth.password_env set without username")
	}
	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("metrics_path %q must start with /", cfg.MetricsPath)
	}
	if !strings.HasPrefix(cfg.TelemetryPath, "/") {
		return fmt.Errorf("telemetry_path %q must start with /", cfg.TelemetryPath)
	}
	// "/" would make the ServeMux route every unknown path to that handler.
	if cfg.MetricsPath == "/" || cfg.TelemetryPath == "/" {
		return fmt.Errorf("metrics_path and telemetry_path must not be /")
	}
	if cfg.MetricsPath == cfg.TelemetryPath {
		return fmt.Errorf("metrics_path and telemetry_path must differ")
	}
	if cfg.MetricsPath == HealthPath || cfg.TelemetryPath == HealthPath {
		return fmt.Errorf("%s is reserved for liveness", HealthPath)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q unknown: want debug|info|warn|error", cfg.LogLevel)
	}
	return nil
}
