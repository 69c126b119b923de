package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Observation is one normalized data point returned by an adapter
type Observation struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
	Raw   string          `json:"raw,omitempty"`
}

// Adapter fetches and normalizes time-series data for one external provider
type Adapter interface {
	// Source returns the provider tag this adapter serves
	Source() string

	// Initialize builds the provider client from its SourceConfig. Returns a
	// ConfigurationError when required credentials are absent.
	Initialize() error

	// StandardizeUnit maps a provider-specific unit string to a canonical
	// token. Total and deterministic; unmapped input passes through unchanged.
	StandardizeUnit(input string) string

	// FetchData fetches and normalizes the series for a canonical indicator
	// name. Returns ErrConfigNotFound when the indicator is not in this
	// source's catalog and UpstreamError on provider failures. An empty but
	// valid series returns an empty slice and no error.
	FetchData(ctx context.Context, indicatorName string) ([]Observation, error)
}

// SourceConfig holds per-provider runtime configuration. Built once at boot
// and immutable afterwards.
type SourceConfig struct {
	APIKey     string
	BaseURL    string
	UserAgent  string        // SEC requires a declared contact
	RateLimit  time.Duration // minimum interval between calls
	FetchLimit int           // max observations per request
}

// newHTTPClient returns the shared client configuration for provider calls
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// httpGetJSON performs a GET request and returns the response body. Non-2xx
// statuses become an UpstreamError carrying the status and a body snippet.
func httpGetJSON(ctx context.Context, client *http.Client, source, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{Source: source, Reason: "failed to build request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return doRequest(client, source, req)
}

// httpPostJSON performs a POST request with a JSON body. Same error contract
// as httpGetJSON.
func httpPostJSON(ctx context.Context, client *http.Client, source, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Source: source, Reason: "failed to encode request", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Source: source, Reason: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doRequest(client, source, req)
}

func doRequest(client *http.Client, source string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Source: source, Reason: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Reason:     strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Source: source, Reason: "failed to read response", Cause: err}
	}
	return body, nil
}

// normalizeUnit resolves input against a provider unit table, falling back to
// a case-insensitive match, and passes unmapped input through unchanged
func normalizeUnit(table map[string]string, input string) string {
	if canonical, ok := table[input]; ok {
		return canonical
	}
	if canonical, ok := table[strings.ToLower(input)]; ok {
		return canonical
	}
	return input
}

// rawJSON renders a provider payload fragment for audit storage
func rawJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// yearDate converts a year-only provider date to the first day of that year
func yearDate(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// lookupOrConfigError resolves a registry entry, wrapping misses so callers
// can match on ErrConfigNotFound
func lookupOrConfigError(source, indicatorName string) (IndicatorSpec, error) {
	spec, ok := Lookup(source, indicatorName)
	if !ok {
		return IndicatorSpec{}, fmt.Errorf("%w: %s has no indicator %q", ErrConfigNotFound, source, indicatorName)
	}
	return spec, nil
}
