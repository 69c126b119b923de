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

func TestIMFFetchDataParsesDataMapper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/NGDP_RPCH/USA", r.URL.Path)
		fmt.Fprint(w, `{"values":{"NGDP_RPCH":{"USA":{
			"2022": 2.062,
			"2023": 2.542,
			"2090": 1.9
		}}}}`)
	}))
	defer server.Close()

	adapter := NewIMFAdapter(SourceConfig{BaseURL: server.URL})
	require.NoError(t, adapter.Initialize())

	points, err := adapter.FetchData(context.Background(), "Real GDP Growth")
	require.NoError(t, err)

	// WEO projection years beyond the present are dropped
	require.Len(t, points, 2)
	assert.Equal(t, yearDate(2023), points[0].Date)
	assert.Equal(t, "2.542", points[0].Value.String())
	assert.Equal(t, yearDate(2022), points[1].Date)
}

func TestIMFFetchDataMissingSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"values":{}}`)
	}))
	defer server.Close()

	adapter := NewIMFAdapter(SourceConfig{BaseURL: server.URL})
	_, err := adapter.FetchData(context.Background(), "Government Gross Debt")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.Contains(t, err.Error(), "GGXWDG_NGDP")
}

func TestIMFFetchDataMissingCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"values":{"BCA_NGDPD":{"DEU":{"2023": 5.9}}}}`)
	}))
	defer server.Close()

	adapter := NewIMFAdapter(SourceConfig{BaseURL: server.URL})
	_, err := adapter.FetchData(context.Background(), "Current Account Balance")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.Contains(t, err.Error(), "USA")
}
