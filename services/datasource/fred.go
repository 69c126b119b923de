package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FREDBaseURL is the St. Louis Fed API root
const FREDBaseURL = "https://api.stlouisfed.org/fred"

// FREDAdapter fetches series observations from the FRED API
type FREDAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// FREDObservationsResponse represents the FRED observations payload
type FREDObservationsResponse struct {
	Count        int               `json:"count"`
	Observations []FREDObservation `json:"observations"`
}

// FREDObservation is one raw FRED observation
type FREDObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

var fredUnits = map[string]string{
	"Percent":                          "%",
	"Percent per Annum":                "%",
	"Billions of Dollars":              "USD Billions",
	"Billions of Chained 2017 Dollars": "USD Billions",
	"Millions of Dollars":              "USD Millions",
	"Index 1982-1984=100":              "Index",
	"Index 2017=100":                   "Index",
	"Dollars":                          "USD",
}

// NewFREDAdapter creates a FRED adapter from its source config
func NewFREDAdapter(cfg SourceConfig) *FREDAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = FREDBaseURL
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 100
	}
	return &FREDAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *FREDAdapter) Source() string {
	return SourceFRED
}

func (a *FREDAdapter) Initialize() error {
	if a.cfg.APIKey == "" {
		return NewConfigurationError(SourceFRED, "api_key", "FRED requires an API key")
	}
	return nil
}

func (a *FREDAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(fredUnits, input)
}

func (a *FREDAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceFRED, indicatorName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("series_id", spec.SeriesID)
	params.Set("api_key", a.cfg.APIKey)
	params.Set("file_type", "json")
	params.Set("sort_order", "desc")
	params.Set("limit", strconv.Itoa(a.cfg.FetchLimit))

	body, err := httpGetJSON(ctx, a.client, SourceFRED, a.cfg.BaseURL+"/series/observations?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload FREDObservationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceFRED, Reason: "failed to parse observations payload", Cause: err}
	}

	points := make([]Observation, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		// FRED marks missing observations with "."
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(obs.Value)
		if err != nil {
			continue
		}
		points = append(points, Observation{
			Date:  date.UTC(),
			Value: value,
			Raw:   rawJSON(obs),
		})
	}
	return points, nil
}
