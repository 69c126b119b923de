package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RapidAPIAdapter fetches series from a RapidAPI-hosted economics provider.
// The marketplace routes by host header, so both the key and the
// subscribed base URL are required.
type RapidAPIAdapter struct {
	cfg    SourceConfig
	client *http.Client
	host   string
}

// RapidAPISeriesResponse is the provider series payload
type RapidAPISeriesResponse struct {
	Data []RapidAPIObservation `json:"data"`
}

// RapidAPIObservation is one raw observation. Value is a json.Number
// because the provider mixes quoted and bare numbers across series.
type RapidAPIObservation struct {
	Date  string      `json:"date"`
	Value json.Number `json:"value"`
}

var rapidAPIUnits = map[string]string{
	"percent":            "%",
	"index":              "Index",
	"points":             "Index",
	"thousands":          "Thousands",
	"thousands of units": "Thousands of Units",
	"usd":                "USD",
}

// NewRapidAPIAdapter creates a RapidAPI adapter from its source config
func NewRapidAPIAdapter(cfg SourceConfig) *RapidAPIAdapter {
	return &RapidAPIAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *RapidAPIAdapter) Source() string {
	return SourceRapidAPI
}

func (a *RapidAPIAdapter) Initialize() error {
	if a.cfg.APIKey == "" {
		return NewConfigurationError(SourceRapidAPI, "api_key", "missing RapidAPI key")
	}
	if a.cfg.BaseURL == "" {
		return NewConfigurationError(SourceRapidAPI, "base_url", "missing subscribed API base URL")
	}
	parsed, err := url.Parse(a.cfg.BaseURL)
	if err != nil || parsed.Host == "" {
		return NewConfigurationError(SourceRapidAPI, "base_url", fmt.Sprintf("%q is not a valid URL", a.cfg.BaseURL))
	}
	a.host = parsed.Host
	return nil
}

func (a *RapidAPIAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(rapidAPIUnits, input)
}

func (a *RapidAPIAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceRapidAPI, indicatorName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("id", spec.SeriesID)
	params.Set("limit", strconv.Itoa(a.cfg.FetchLimit))

	endpoint := fmt.Sprintf("%s/series?%s", a.cfg.BaseURL, params.Encode())
	headers := map[string]string{
		"X-RapidAPI-Key":  a.cfg.APIKey,
		"X-RapidAPI-Host": a.host,
	}
	body, err := httpGetJSON(ctx, a.client, SourceRapidAPI, endpoint, headers)
	if err != nil {
		return nil, err
	}

	var payload RapidAPISeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceRapidAPI, Reason: "failed to parse series payload", Cause: err}
	}

	points := make([]Observation, 0, len(payload.Data))
	for _, obs := range payload.Data {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(obs.Value.String())
		if err != nil {
			continue
		}
		points = append(points, Observation{
			Date:  date,
			Value: value,
			Raw:   rawJSON(obs),
		})
	}
	return points, nil
}
