// Package provider contains the upstream adapters. Each adapter translates a
// geographic or textual query into a provider-specific request and the raw
// JSON response into a provider-native record list. Adapters never crash the
// caller: every failure surfaces as an *UpstreamError for the aggregation
// boundary to handle.
package provider

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

const (
	userAgent    = "WireTapper/0.0 (+https://github.com/h9zdev/wiretapper)"
	acceptHeader = "application/json,text/plain;q=0.9,*/*;q=0.1"
)

// UpstreamError reports a failed provider call. StatusCode is zero when the
// transport failed before any HTTP status was received.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewHTTPClient returns the shared client configuration for provider calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// doRequest executes req with the fixed identity headers, mapping transport
// failures and non-2xx statuses to *UpstreamError. The caller owns the
// response body on success.
func doRequest(client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = NewHTTPClient()
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "upstream request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() // nolint:errcheck // best-effort cleanup before erroring
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "upstream API error",
		}
	}
	return resp, nil
}
