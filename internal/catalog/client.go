// Package catalog is the client for the remote lookup API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-report/internal/apperr"
	"catalog-report/internal/auth"
	"catalog-report/internal/config"
	"catalog-report/internal/executor"
	"catalog-report/internal/httpclient"
	"catalog-report/internal/logging"
	"catalog-report/internal/util"

	"golang.org/x/time/rate"
)

var (
	// ErrTransport wraps any failure to obtain a response at all.
	ErrTransport = errors.New("catalog transport failure")
	// ErrUnexpectedStatus is returned for statuses that carry no classifiable body
	// (anything other than 200 or above 400).
	ErrUnexpectedStatus = errors.New("unexpected catalog status")
)

// ClientOpts tunes the HTTP side of the client.
type ClientOpts struct {
	Retry             config.RetryConfig
	Timeout           time.Duration
	TlsSkipVerify     bool
	RequestsPerSecond float64
}

// Client fetches raw lookup bodies by name. Requests are signed by an
// auth.SigningRoundTripper installed on its transport.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	retry      config.RetryConfig
	limiter    *rate.Limiter
}

// NewClient validates the credentials and builds a client for baseURL.
// Missing credentials fail with apperr.ErrMissingValue, empty ones with apperr.ErrInvalidValue.
func NewClient(baseURL string, credentials map[string]string, opts ClientOpts) (*Client, error) {
	signer, err := auth.NewSigner(credentials)
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog client: base URL '%s': %w", baseURL, apperr.ErrInvalidValue)
	}

	httpClient := httpclient.NewClient(
		httpclient.Settings{Name: "catalog " + u.Host, Timeout: opts.Timeout, TlsSkipVerify: opts.TlsSkipVerify},
		func(next http.RoundTripper) http.RoundTripper {
			return &auth.SigningRoundTripper{Signer: signer, Next: next}
		},
	)

	c := &Client{
		baseURL:    u,
		httpClient: httpClient,
		retry:      opts.Retry,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		logging.Logf(logging.Debug, "Catalog client rate limited to %.2f req/s", opts.RequestsPerSecond)
	}
	return c, nil
}

// FetchByName issues the signed lookup for name and returns the raw body.
//
// Names containing a space are rejected before any request is made. Bodies are
// returned for status 200 and for every status above 400, leaving the
// distinction to the classifier. Other statuses and transport failures return
// an error and no body.
func (c *Client) FetchByName(ctx context.Context, name string) ([]byte, error) {
	if err := apperr.RequireName(name); err != nil {
		return nil, err
	}
	if strings.Contains(name, " ") {
		return nil, fmt.Errorf("name '%s' contains a space: %w", name, apperr.ErrInvalidValue)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
		}
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrTransport, err)
	}
	req.Header.Set("accept", "application/json")

	logging.Logf(logging.Debug, "Catalog: GET %s", util.RedactURL(req.URL.String()))
	resp, body, err := executor.ExecuteRequest(c.httpClient, req, c.retry)
	if err != nil {
		logging.Logf(logging.Warning, "Catalog: lookup for '%s' failed: %v", name, err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode > http.StatusBadRequest {
		logging.Logf(logging.Debug, "Catalog: status %d for '%s'", resp.StatusCode, name)
		return body, nil
	}
	logging.Logf(logging.Warning, "Catalog: status %d for '%s' carries no usable body", resp.StatusCode, name)
	return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
}
