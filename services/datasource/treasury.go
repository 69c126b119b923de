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

// TreasuryBaseURL is the Treasury Fiscal Data API root
const TreasuryBaseURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"

// TreasuryAdapter fetches datasets from the Treasury Fiscal Data API. No
// credentials are required. Each catalog entry names the dataset path and
// the column holding the value.
type TreasuryAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// TreasuryResponse is the generic Fiscal Data envelope. Rows stay untyped
// because every dataset has its own columns.
type TreasuryResponse struct {
	Data []map[string]interface{} `json:"data"`
	Meta struct {
		Count      int `json:"count"`
		TotalCount int `json:"total-count"`
	} `json:"meta"`
}

var treasuryUnits = map[string]string{
	"Percent":              "%",
	"Dollars":              "USD",
	"Millions of Dollars":  "USD Millions",
	"Billions of Dollars":  "USD Billions",
	"Trillions of Dollars": "USD Trillions",
}

// NewTreasuryAdapter creates a Treasury adapter from its source config
func NewTreasuryAdapter(cfg SourceConfig) *TreasuryAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = TreasuryBaseURL
	}
	return &TreasuryAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *TreasuryAdapter) Source() string {
	return SourceTreasury
}

func (a *TreasuryAdapter) Initialize() error {
	return nil
}

func (a *TreasuryAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(treasuryUnits, input)
}

func (a *TreasuryAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceTreasury, indicatorName)
	if err != nil {
		return nil, err
	}
	if spec.ValueField == "" {
		return nil, NewConfigurationError(SourceTreasury, "value_field", fmt.Sprintf("indicator %q declares no value column", indicatorName))
	}

	params := url.Values{}
	params.Set("sort", "-record_date")
	params.Set("page[size]", strconv.Itoa(a.cfg.FetchLimit))
	params.Set("format", "json")

	endpoint := fmt.Sprintf("%s/%s?%s", a.cfg.BaseURL, spec.SeriesID, params.Encode())
	body, err := httpGetJSON(ctx, a.client, SourceTreasury, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var payload TreasuryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceTreasury, Reason: "failed to parse dataset payload", Cause: err}
	}

	points := make([]Observation, 0, len(payload.Data))
	for _, row := range payload.Data {
		dateText, ok := row["record_date"].(string)
		if !ok {
			continue
		}
		date, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			continue
		}
		value, ok := treasuryValue(row[spec.ValueField])
		if !ok {
			continue
		}
		points = append(points, Observation{
			Date:  date,
			Value: value,
			Raw:   rawJSON(row),
		})
	}
	return points, nil
}

// treasuryValue coerces a Fiscal Data cell to a decimal. Columns arrive as
// strings in most datasets but some are plain numbers, and null marks a
// missing cell.
func treasuryValue(cell interface{}) (decimal.Decimal, bool) {
	switch v := cell.(type) {
	case string:
		if v == "" || v == "null" {
			return decimal.Decimal{}, false
		}
		value, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return value, true
	case float64:
		return decimal.NewFromFloat(v), true
	}
	return decimal.Decimal{}, false
}
