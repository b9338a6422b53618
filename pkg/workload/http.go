package workload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// newHTTP builds a workload that issues one GET request per call and drains
// the response body. The request is prepared once; only the round trip and
// body read are measured.
//
// Requests are never retried, so each sample is exactly one round trip.
func newHTTP(cfg Config) (Instance, error) {
	if cfg.URL == "" {
		return Instance{}, ErrMissingURL
	}

	target, err := url.Parse(cfg.URL)
	if err != nil {
		return Instance{}, fmt.Errorf("invalid URL: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return Instance{}, fmt.Errorf("unsupported URL scheme %q", target.Scheme)
	}
	if cfg.Timeout <= 0 {
		return Instance{}, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}

	request, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target.String(), nil)
	if err != nil {
		return Instance{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{Transport: transport}
	timeout := cfg.Timeout
	failure := &firstError{}

	op := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// A shallow copy per call; the client must not see a context from an earlier call.
		response, err := client.Do(request.WithContext(ctx))
		if err != nil {
			failure.record(fmt.Errorf("request failed: %w", err))
			return
		}
		defer func() { _ = response.Body.Close() }()

		// Drain so the connection can be reused by the next call.
		if _, err := io.Copy(io.Discard, response.Body); err != nil {
			failure.record(fmt.Errorf("failed to read response body: %w", err))
			return
		}
		if response.StatusCode >= http.StatusBadRequest {
			failure.record(fmt.Errorf("unexpected status code: %d", response.StatusCode))
		}
	}

	return Instance{Op: op, failure: failure, closer: transport.CloseIdleConnections}, nil
}
