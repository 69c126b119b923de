package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldBankFetchDataParsesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/country/USA/indicator/NY.GDP.MKTP.CD", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[
			{"page":1,"pages":1,"per_page":50,"total":3},
			[
				{"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"US","value":"United States"},"date":"2023","value":27360935000000},
				{"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"US","value":"United States"},"date":"2022","value":null},
				{"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"US","value":"United States"},"date":"2021","value":23315080560000}
			]
		]`)
	}))
	defer server.Close()

	adapter := NewWorldBankAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 50})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "GDP Current USD")
	require.NoError(t, err)

	// Years without a reported value are dropped
	require.Len(t, points, 2)
	assert.Equal(t, yearDate(2023), points[0].Date)
	assert.Equal(t, yearDate(2021), points[1].Date)
	assert.Equal(t, "27360935000000", points[0].Value.String())
}

func TestWorldBankErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Invalid indicator requests come back as a one element array
		fmt.Fprint(w, `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`)
	}))
	defer server.Close()

	adapter := NewWorldBankAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 50})
	_, err := adapter.FetchData(context.Background(), "GDP Growth Rate")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
}

func TestWorldBankUnknownIndicator(t *testing.T) {
	adapter := NewWorldBankAdapter(SourceConfig{})
	_, err := adapter.FetchData(context.Background(), "Not In Catalog")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
