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

func TestECBFetchDataParsesSDMX(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EXR/D.USD.EUR.SP00.A", r.URL.Path)
		assert.Equal(t, "jsondata", r.URL.Query().Get("format"))
		assert.Equal(t, "3", r.URL.Query().Get("lastNObservations"))
		fmt.Fprint(w, `{
			"dataSets": [{"series": {"0:0:0:0:0": {"observations": {
				"0": [1.0854],
				"1": [1.0932],
				"2": [null]
			}}}}],
			"structure": {"dimensions": {"observation": [
				{"id": "TIME_PERIOD", "values": [
					{"id": "2024-01-15", "name": "2024-01-15"},
					{"id": "2024-01-16", "name": "2024-01-16"},
					{"id": "2024-01-17", "name": "2024-01-17"}
				]}
			]}}
		}`)
	}))
	defer server.Close()

	adapter := NewECBAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 3})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "EUR/USD Exchange Rate")
	require.NoError(t, err)

	// Null observations are dropped; results come back newest first
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, "1.0932", points[0].Value.String())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), points[1].Date)
}

func TestECBFetchDataMissingTimeDimension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dataSets":[{"series":{}}],"structure":{"dimensions":{"observation":[]}}}`)
	}))
	defer server.Close()

	adapter := NewECBAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 3})
	_, err := adapter.FetchData(context.Background(), "Euro Area Inflation")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.Contains(t, err.Error(), "TIME_PERIOD")
}

func TestParseSDMXDate(t *testing.T) {
	tests := []struct {
		period string
		want   time.Time
		ok     bool
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-Q3", time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-Q1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2022", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-Q5", time.Time{}, false},
		{"garbage", time.Time{}, false},
		{"12", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseSDMXDate(tt.period)
		assert.Equal(t, tt.ok, ok, tt.period)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.period)
		}
	}
}
