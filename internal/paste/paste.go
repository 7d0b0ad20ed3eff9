// Package paste publishes report text to the paste-hosting API and remembers
// the URL of the last successful paste.
package paste

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
	"catalog-report/internal/entity"
	"catalog-report/internal/executor"
	"catalog-report/internal/httpclient"
	"catalog-report/internal/logging"
	"catalog-report/internal/util"
)

// Form keys and literals of the paste API.
const (
	ParamDevKey    = "api_dev_key"
	ParamOption    = "api_option"
	ParamPasteName = "api_paste_name"
	ParamPasteCode = "api_paste_code"

	OptionPaste = "paste"
	TitleSuffix = " Report"
)

// ErrPublishFailed is returned when the paste API did not accept the report.
var ErrPublishFailed = errors.New("publish failed")

// Publisher is the publish capability the facade depends on.
type Publisher interface {
	Publish(ctx context.Context, e *entity.Entity, report string) error
	LastURL() (string, bool)
}

// ClientOpts tunes the HTTP side of the client.
type ClientOpts struct {
	Retry         config.RetryConfig
	Timeout       time.Duration
	TlsSkipVerify bool
}

// Client posts reports to the live paste API.
type Client struct {
	endpoint   string
	devKey     string
	httpClient *http.Client
	retry      config.RetryConfig
	lastURL    string
}

// NewClient validates the publish credential and builds a client for endpoint.
// Missing credentials fail with apperr.ErrMissingValue, empty ones with apperr.ErrInvalidValue.
func NewClient(endpoint string, credentials map[string]string, opts ClientOpts) (*Client, error) {
	devKey, err := apperr.RequireCredential(credentials, auth.CredPublishKey)
	if err != nil {
		return nil, fmt.Errorf("paste client: %w", err)
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("paste client: endpoint '%s': %w", endpoint, apperr.ErrInvalidValue)
	}

	return &Client{
		endpoint: endpoint,
		devKey:   devKey,
		httpClient: httpclient.NewClient(httpclient.Settings{
			Name:          "paste " + u.Host,
			Timeout:       opts.Timeout,
			TlsSkipVerify: opts.TlsSkipVerify,
		}),
		retry: opts.Retry,
	}, nil
}

// Publish posts report titled after e.Name. On a status below 400 the
// response body, unmodified, becomes the last URL; any other outcome clears it.
func (c *Client) Publish(ctx context.Context, e *entity.Entity, report string) error {
	if e == nil {
		c.lastURL = ""
		return fmt.Errorf("nothing to publish: %w", apperr.ErrMissingValue)
	}

	form := url.Values{}
	form.Set(ParamDevKey, c.devKey)
	form.Set(ParamOption, OptionPaste)
	form.Set(ParamPasteName, e.Name+TitleSuffix)
	form.Set(ParamPasteCode, report)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		c.lastURL = ""
		return fmt.Errorf("%w: building request: %v", ErrPublishFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logging.Logf(logging.Debug, "Paste: POST %s (%d bytes of report)", c.endpoint, len(report))
	resp, body, err := executor.ExecuteRequest(c.httpClient, req, c.retry)
	if err != nil {
		c.lastURL = ""
		logging.Logf(logging.Warning, "Paste: publishing '%s' failed: %v", e.Name, err)
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.lastURL = ""
		logging.Logf(logging.Warning, "Paste: status %d: %s", resp.StatusCode, util.Snippet(body))
		return fmt.Errorf("%w: status %d: %s", ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.lastURL = string(body)
	logging.Logf(logging.Info, "Paste: published '%s' to %s", e.Name, c.lastURL)
	return nil
}

// LastURL returns the URL of the last successful publish.
func (c *Client) LastURL() (string, bool) {
	return c.lastURL, c.lastURL != ""
}
