package scraper

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"golang.org/x/net/html/charset"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/config"
)

// MaxPageBytes caps the console page size. The i2pd main page is a few KiB.
const MaxPageBytes = 16 << 20

// Fetcher performs one GET of the i2pd web console per call.
// It holds no per-request state and is safe for concurrent use; only TCP
// connections are pooled, never page bodies.
type Fetcher struct {
	url      string
	redacted string // url with the userinfo password masked, for errors
	client   *http.Client
}

// New returns a Fetcher for the given upstream. The HTTP client is built once
// and its Timeout bounds every fetch end to end.
func New(up config.Upstream) (*Fetcher, error) {
	client, err := buildHTTPClient(up)
	if err != nil {
		return nil, fmt.Errorf("scraper: build http client: %w", err)
	}
	return &Fetcher{url: up.URL, redacted: up.Redacted(), client: client}, nil
}

// Fetch downloads the console page and returns it decoded to UTF-8.
// Transport-level failures are returned as *FetchError.
// Cancelling ctx abandons the request.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Kind: classify(err), URL: f.redacted, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{
			Kind:       NonSuccessStatus,
			URL:        f.redacted,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes+1))
	if err != nil {
		return "", &FetchError{Kind: classify(err), URL: f.redacted, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(raw) > MaxPageBytes {
		return "", &FetchError{Kind: Transport, URL: f.redacted, Err: fmt.Errorf("page exceeds %d bytes", MaxPageBytes)}
	}

	return decode(raw, resp.Header.Get("Content-Type"))
}

// decode converts raw to UTF-8 according to the declared or sniffed charset.
func decode(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("scraper: decode page: %w", err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("scraper: decode page: %w", err)
	}
	return string(text), nil
}

// classify maps a client error onto a FetchError kind.
func classify(err error) Kind {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return Timeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnectionRefused
	default:
		return Transport
	}
}

// basicAuthRoundTripper injects basic-auth credentials into every request.
type basicAuthRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.auth.Username, t.auth.Password())
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the upstream's auth and TLS settings.
func buildHTTPClient(up config.Upstream) (*http.Client, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not *http.Transport")
	}
	transport := base.Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: up.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	var rt http.RoundTripper = transport
	if up.Auth.Enabled() {
		rt = &basicAuthRoundTripper{base: transport, auth: up.Auth}
	}
	return &http.Client{
		Transport: rt,
		Timeout:   up.Timeout,
	}, nil
}
