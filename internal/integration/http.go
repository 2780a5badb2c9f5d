// Package integration holds the shared plumbing of the upstream API clients.
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUpstream wraps every failure caused by a third-party API. Handlers map it to 502.
var ErrUpstream = errors.New("upstream service error")

const DefaultTimeout = 10 * time.Second

// maxBody caps upstream responses; OFPs are the largest at a few hundred KB.
const maxBody = 4 << 20

func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// GetJSON performs a GET and decodes a 2xx JSON body into out.
func GetJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, out interface{}) error {
	body, err := Get(ctx, hc, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, url, err)
	}
	return nil
}

// Get returns the raw body of a 2xx response.
func Get(ctx context.Context, hc *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vaops/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

// StatusError is a non-2xx upstream response. It unwraps to ErrUpstream.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
