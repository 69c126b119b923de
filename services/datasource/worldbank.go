package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// WorldBankBaseURL is the World Bank open data API root
const WorldBankBaseURL = "https://api.worldbank.org/v2"

// WorldBankAdapter fetches annual country indicators from the World Bank
// open data API. No credentials are required.
type WorldBankAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// WorldBankObservation is one row of the World Bank indicator payload
type WorldBankObservation struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

var worldBankUnits = map[string]string{
	"current US$":        "USD",
	"annual %":           "%",
	"% of GDP":           "% of GDP",
	"constant 2015 US$":  "USD",
	"current LCU":        "LCU",
	"constant LCU":       "LCU",
	"BoP, current US$":   "USD",
	"2010 = 100":         "Index",
	"% of total":         "%",
	"annual % growth":    "%",
	"US dollars":         "USD",
	"percent":            "%",
	"index (2010 = 100)": "Index",
}

// NewWorldBankAdapter creates a World Bank adapter from its source config
func NewWorldBankAdapter(cfg SourceConfig) *WorldBankAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = WorldBankBaseURL
	}
	return &WorldBankAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *WorldBankAdapter) Source() string {
	return SourceWorldBank
}

func (a *WorldBankAdapter) Initialize() error {
	return nil
}

func (a *WorldBankAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(worldBankUnits, input)
}

func (a *WorldBankAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceWorldBank, indicatorName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("per_page", strconv.Itoa(a.cfg.FetchLimit))

	endpoint := fmt.Sprintf("%s/country/USA/indicator/%s?%s", a.cfg.BaseURL, spec.SeriesID, params.Encode())
	body, err := httpGetJSON(ctx, a.client, SourceWorldBank, endpoint, nil)
	if err != nil {
		return nil, err
	}

	// The payload is a two element array: [metadata, rows]. Error responses
	// come back as a one element array holding the message.
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &UpstreamError{Source: SourceWorldBank, Reason: "failed to parse indicator payload", Cause: err}
	}
	if len(envelope) < 2 {
		return nil, &UpstreamError{Source: SourceWorldBank, Reason: "indicator payload missing data rows"}
	}

	var rows []WorldBankObservation
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, &UpstreamError{Source: SourceWorldBank, Reason: "failed to parse indicator rows", Cause: err}
	}

	points := make([]Observation, 0, len(rows))
	for _, row := range rows {
		if row.Value == nil {
			continue
		}
		year, err := strconv.Atoi(row.Date)
		if err != nil {
			continue
		}
		points = append(points, Observation{
			Date:  yearDate(year),
			Value: decimal.NewFromFloat(*row.Value),
			Raw:   rawJSON(row),
		})
	}
	return points, nil
}
