package executor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalog-report/internal/config"
	"catalog-report/internal/logging"
	"catalog-report/internal/util"
)

// sleepFunc defines the signature for a function that pauses execution.
// Used to allow mocking time.Sleep during tests.
type sleepFunc func(time.Duration)

// DefaultSleep is the sleep used between attempts. Tests replace it.
var DefaultSleep sleepFunc = time.Sleep

// Doer is the part of *http.Client the executor needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// ExecuteRequest sends req and reads the whole response body.
//
// With the default retry settings (MaxAttempts 1) the request is sent exactly
// once. When more attempts are configured, transport errors and 5xx codes not
// listed in ExcludeErrors are retried after a fixed backoff. Any other status,
// including 4xx, is returned to the caller as-is for it to interpret. An error
// is returned only when no response was obtained at all.
func ExecuteRequest(client Doer, req *http.Request, retryCfg config.RetryConfig) (*http.Response, []byte, error) {
	maxAttempts := retryCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoffDuration := time.Duration(retryCfg.Backoff) * time.Second

	// A body must be replayable to be sent more than once.
	if req.Body != nil && req.GetBody == nil && maxAttempts > 1 {
		bodyBytes, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read request body for potential retry: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
		req.ContentLength = int64(len(bodyBytes))
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			logging.Logf(logging.Info, "Retrying in %v...", backoffDuration)
			DefaultSleep(backoffDuration)
			if req.GetBody != nil {
				newBody, err := req.GetBody()
				if err != nil {
					return nil, nil, fmt.Errorf("failed to reset request body for retry attempt: %w", err)
				}
				req.Body = newBody
			}
		}
		if maxAttempts > 1 {
			logging.Logf(logging.Debug, "Request attempt %d/%d for %s %s", attempt, maxAttempts, req.Method, util.RedactURL(req.URL.String()))
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			logging.Logf(logging.Info, "Attempt %d failed: %v", attempt, err)
			continue
		}

		bodyBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			// Body read errors are not retried.
			return resp, nil, fmt.Errorf("failed to read response body (status %d): %w", resp.StatusCode, readErr)
		}
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		// The last attempt's response is handed back whatever its status.
		if !isRetryable(resp.StatusCode, retryCfg.ExcludeErrors) || attempt == maxAttempts {
			logging.Logf(logging.Debug, "Attempt %d finished with status %d: %s", attempt, resp.StatusCode, util.Snippet(bodyBytes))
			return resp, bodyBytes, nil
		}

		lastErr = fmt.Errorf("received retryable status code %d", resp.StatusCode)
		logging.Logf(logging.Info, "Attempt %d failed: %v", attempt, lastErr)
	}

	return nil, nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

func isRetryable(statusCode int, excluded []int) bool {
	if statusCode < 500 || statusCode > 599 {
		return false
	}
	for _, code := range excluded {
		if statusCode == code {
			return false
		}
	}
	return true
}
