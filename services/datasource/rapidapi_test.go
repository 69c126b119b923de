package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRapidAPIInitializeValidation(t *testing.T) {
	err := NewRapidAPIAdapter(SourceConfig{BaseURL: "https://example.p.rapidapi.com"}).Initialize()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "api_key")

	err = NewRapidAPIAdapter(SourceConfig{APIKey: "key"}).Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")

	err = NewRapidAPIAdapter(SourceConfig{APIKey: "key", BaseURL: "not a url"}).Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestRapidAPIFetchDataSendsMarketplaceHeaders(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series", r.URL.Path)
		assert.Equal(t, "consumer-confidence", r.URL.Query().Get("id"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "rapid-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), r.Header.Get("X-RapidAPI-Host"))
		fmt.Fprint(w, `{"data":[
			{"date":"2024-02-01","value":106.7},
			{"date":"2024-01-01","value":"110.9"},
			{"date":"not-a-date","value":1}
		]}`)
	}))
	defer server.Close()

	adapter := NewRapidAPIAdapter(SourceConfig{APIKey: "rapid-key", BaseURL: server.URL, FetchLimit: 100})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "US Consumer Confidence")
	require.NoError(t, err)

	// Quoted and bare numbers both parse; the malformed date row is dropped
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, "106.7", points[0].Value.String())
	assert.Equal(t, "110.9", points[1].Value.String())
}

func TestRapidAPIFetchDataUnknownIndicator(t *testing.T) {
	adapter := NewRapidAPIAdapter(SourceConfig{APIKey: "rapid-key", BaseURL: "https://example.p.rapidapi.com"})
	require.NoError(t, adapter.Initialize())

	_, err := adapter.FetchData(context.Background(), "Unemployment Rate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
