package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreasuryFetchDataReadsValueField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounting/od/avg_interest_rates", r.URL.Path)
		assert.Equal(t, "-record_date", r.URL.Query().Get("sort"))
		assert.Equal(t, "25", r.URL.Query().Get("page[size]"))
		fmt.Fprint(w, `{"data":[
			{"record_date":"2024-01-31","avg_interest_rate_amt":"3.115","security_desc":"Treasury Bills"},
			{"record_date":"2023-12-31","avg_interest_rate_amt":null,"security_desc":"Treasury Bills"},
			{"record_date":"2023-11-30","avg_interest_rate_amt":"3.101","security_desc":"Treasury Bills"}
		],"meta":{"count":3,"total-count":3}}`)
	}))
	defer server.Close()

	adapter := NewTreasuryAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 25})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "Average Interest Rate on US Debt")
	require.NoError(t, err)

	// Rows with a null value column are dropped
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, "3.115", points[0].Value.String())
	assert.Contains(t, points[0].Raw, "security_desc")
}

func TestTreasuryFetchDataNumericCells(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"record_date":"2024-02-01","open_today_bal":812345.67}],"meta":{"count":1}}`)
	}))
	defer server.Close()

	adapter := NewTreasuryAdapter(SourceConfig{BaseURL: server.URL, FetchLimit: 25})
	points, err := adapter.FetchData(context.Background(), "Treasury Operating Cash Balance")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "812345.67", points[0].Value.String())
}

func TestTreasuryValueCoercion(t *testing.T) {
	value, ok := treasuryValue("3.25")
	require.True(t, ok)
	assert.True(t, value.Equal(decimal.RequireFromString("3.25")))

	value, ok = treasuryValue(12.5)
	require.True(t, ok)
	assert.True(t, value.Equal(decimal.RequireFromString("12.5")))

	_, ok = treasuryValue(nil)
	assert.False(t, ok)
	_, ok = treasuryValue("")
	assert.False(t, ok)
	_, ok = treasuryValue("null")
	assert.False(t, ok)
	_, ok = treasuryValue("not a number")
	assert.False(t, ok)
}
