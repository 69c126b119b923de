package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// AlphaVantageBaseURL is the Alpha Vantage query endpoint
const AlphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageAdapter fetches economic series from the Alpha Vantage API
type AlphaVantageAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// AlphaVantageSeriesResponse represents the Alpha Vantage series envelope
type AlphaVantageSeriesResponse struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Unit     string `json:"unit"`
	Data     []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
}

// alphaVantageErrorResponse covers the error shapes Alpha Vantage returns
// with a 200 status
type alphaVantageErrorResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

var alphaVantageUnits = map[string]string{
	"percent":              "%",
	"dollars":              "USD",
	"billions of dollars":  "USD Billions",
	"millions of dollars":  "USD Millions",
	"thousands of persons": "Thousands of Persons",
	"index 1966:Q1=100":    "Index",
	"index":                "Index",
}

// NewAlphaVantageAdapter creates an Alpha Vantage adapter from its source config
func NewAlphaVantageAdapter(cfg SourceConfig) *AlphaVantageAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AlphaVantageBaseURL
	}
	return &AlphaVantageAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *AlphaVantageAdapter) Source() string {
	return SourceAlphaVantage
}

func (a *AlphaVantageAdapter) Initialize() error {
	if a.cfg.APIKey == "" {
		return NewConfigurationError(SourceAlphaVantage, "api_key", "Alpha Vantage requires an API key")
	}
	return nil
}

func (a *AlphaVantageAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(alphaVantageUnits, input)
}

func (a *AlphaVantageAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceAlphaVantage, indicatorName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("function", spec.SeriesID)
	params.Set("apikey", a.cfg.APIKey)

	body, err := httpGetJSON(ctx, a.client, SourceAlphaVantage, a.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload AlphaVantageSeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceAlphaVantage, Reason: "failed to parse series payload", Cause: err}
	}

	// Alpha Vantage reports quota and key problems inside a 200 response
	if len(payload.Data) == 0 {
		var errPayload alphaVantageErrorResponse
		if err := json.Unmarshal(body, &errPayload); err == nil {
			reason := errPayload.ErrorMessage
			if reason == "" {
				reason = errPayload.Note
			}
			if reason == "" {
				reason = errPayload.Information
			}
			if reason != "" {
				return nil, &UpstreamError{Source: SourceAlphaVantage, Reason: reason}
			}
		}
	}

	points := make([]Observation, 0, len(payload.Data))
	for _, obs := range payload.Data {
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
