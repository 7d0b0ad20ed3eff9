package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"catalog-report/internal/logging"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Settings configures one client. Name only appears in log lines.
type Settings struct {
	Name          string
	Timeout       time.Duration
	TlsSkipVerify bool
}

// Wrapper decorates the base transport, e.g. to sign requests.
type Wrapper func(http.RoundTripper) http.RoundTripper

// NewClient creates an *http.Client with a tuned base transport, optionally
// wrapped by the given wrappers in order (the last wrapper is outermost).
func NewClient(settings Settings, wrappers ...Wrapper) *http.Client {
	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: settings.TlsSkipVerify,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if settings.TlsSkipVerify {
		logging.Logf(logging.Info, "TLS certificate verification is DISABLED for %s", settings.Name)
	}

	var transport http.RoundTripper = baseTransport
	for _, wrap := range wrappers {
		transport = wrap(transport)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logging.Logf(logging.Debug, "HTTP client for %s: timeout %v", settings.Name, timeout)

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Seconds converts a configured seconds value into a timeout, falling back to DefaultTimeout.
func Seconds(n int) time.Duration {
	if n <= 0 {
		return DefaultTimeout
	}
	return time.Duration(n) * time.Second
}
