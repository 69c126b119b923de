package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaVantageInitializeRequiresKey(t *testing.T) {
	err := NewAlphaVantageAdapter(SourceConfig{}).Initialize()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestAlphaVantageFetchDataParsesSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "INFLATION", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{
			"name": "Inflation - US Consumer Prices",
			"interval": "annual",
			"unit": "percent",
			"data": [
				{"date": "2023-01-01", "value": "4.116338383"},
				{"date": "2022-01-01", "value": "8.0028"},
				{"date": "2021-01-01", "value": "."}
			]
		}`)
	}))
	defer server.Close()

	adapter := NewAlphaVantageAdapter(SourceConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "Inflation Rate")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, "4.116338383", points[0].Value.String())
}

func TestAlphaVantageSurfacesEmbeddedErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error message", `{"Error Message": "Invalid API call."}`, "Invalid API call."},
		{"rate limit note", `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`, "rate limit"},
		{"premium notice", `{"Information": "This is a premium endpoint."}`, "premium endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			adapter := NewAlphaVantageAdapter(SourceConfig{APIKey: "test-key", BaseURL: server.URL})
			_, err := adapter.FetchData(context.Background(), "Inflation Rate")
			require.Error(t, err)
			assert.True(t, IsUpstreamError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAlphaVantageEmptySeriesWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "Inflation", "interval": "annual", "unit": "percent", "data": []}`)
	}))
	defer server.Close()

	adapter := NewAlphaVantageAdapter(SourceConfig{APIKey: "test-key", BaseURL: server.URL})
	points, err := adapter.FetchData(context.Background(), "Inflation Rate")
	require.NoError(t, err)
	assert.Empty(t, points)
}
