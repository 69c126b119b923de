package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BLSBaseURL is the BLS public timeseries endpoint
const BLSBaseURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

// blsYearWindow is how many calendar years each fetch covers
const blsYearWindow = 3

// BLSAdapter fetches series from the BLS public data API. The registration
// key is optional; unkeyed requests run at the lower public tier.
type BLSAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// BLSRequest is the POST body for a timeseries query
type BLSRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

// BLSResponse represents the BLS timeseries payload
type BLSResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string           `json:"seriesID"`
			Data     []BLSObservation `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// BLSObservation is one raw BLS observation
type BLSObservation struct {
	Year       string `json:"year"`
	Period     string `json:"period"`
	PeriodName string `json:"periodName"`
	Value      string `json:"value"`
}

var blsUnits = map[string]string{
	"Percent":           "%",
	"Index":             "Index",
	"Index 1982-84=100": "Index",
	"Dollars":           "USD",
	"Dollars per Hour":  "USD",
}

// NewBLSAdapter creates a BLS adapter from its source config
func NewBLSAdapter(cfg SourceConfig) *BLSAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BLSBaseURL
	}
	return &BLSAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *BLSAdapter) Source() string {
	return SourceBLS
}

func (a *BLSAdapter) Initialize() error {
	return nil
}

func (a *BLSAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(blsUnits, input)
}

func (a *BLSAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceBLS, indicatorName)
	if err != nil {
		return nil, err
	}

	endYear := time.Now().UTC().Year()
	request := BLSRequest{
		SeriesID:        []string{spec.SeriesID},
		StartYear:       strconv.Itoa(endYear - (blsYearWindow - 1)),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: a.cfg.APIKey,
	}

	body, err := httpPostJSON(ctx, a.client, SourceBLS, a.cfg.BaseURL, request)
	if err != nil {
		return nil, err
	}

	var payload BLSResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceBLS, Reason: "failed to parse timeseries payload", Cause: err}
	}
	if payload.Status != "REQUEST_SUCCEEDED" {
		return nil, &UpstreamError{
			Source: SourceBLS,
			Reason: payload.Status + ": " + strings.Join(payload.Message, "; "),
		}
	}

	var points []Observation
	for _, series := range payload.Results.Series {
		for _, obs := range series.Data {
			date, ok := blsPeriodDate(obs.Year, obs.Period)
			if !ok {
				continue
			}
			value, err := decimal.NewFromString(obs.Value)
			if err != nil {
				continue
			}
			points = append(points, Observation{
				Date:  date,
				Value: value,
				Raw:   rawJSON(obs),
			})
		}
	}
	if points == nil {
		points = []Observation{}
	}
	return points, nil
}

// blsPeriodDate converts a BLS year/period pair to a date. Monthly periods are
// M01..M12 (M13 is the annual average and is skipped), quarterly Q01..Q04,
// annual A01.
func blsPeriodDate(year, period string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	if len(period) != 3 {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(period[1:])
	if err != nil {
		return time.Time{}, false
	}

	switch period[0] {
	case 'M':
		if n < 1 || n > 12 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(n), 1, 0, 0, 0, 0, time.UTC), true
	case 'Q':
		if n < 1 || n > 4 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month((n-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	case 'A':
		return yearDate(y), true
	}
	return time.Time{}, false
}
