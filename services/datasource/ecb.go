package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ECBBaseURL is the ECB data portal API root
const ECBBaseURL = "https://data-api.ecb.europa.eu/service/data"

// ECBAdapter fetches euro area series from the ECB data portal, which
// serves SDMX-JSON. No credentials are required.
type ECBAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// ECBSeriesResponse is the subset of the SDMX-JSON payload the adapter
// reads. Observation values are keyed by their index into the TIME_PERIOD
// dimension declared in the structure block.
type ECBSeriesResponse struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]interface{} `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
	Structure struct {
		Dimensions struct {
			Observation []ECBDimension `json:"observation"`
		} `json:"dimensions"`
	} `json:"structure"`
}

// ECBDimension describes one observation dimension of an SDMX series
type ECBDimension struct {
	ID     string `json:"id"`
	Values []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"values"`
}

var ecbUnits = map[string]string{
	"Percent":                    "%",
	"Percentage":                 "%",
	"Percent per annum":          "%",
	"Annual rate of change":      "%",
	"US dollar":                  "USD",
	"Euro":                       "EUR",
	"Index, 2015=100":            "Index",
	"US dollar/Euro":             "USD per EUR",
	"Percentage points":          "pp",
	"Millions of Euro":           "EUR Millions",
	"Percent of GDP":             "% of GDP",
	"Pure number":                "Ratio",
	"Index":                      "Index",
	"Domestic currency per Euro": "per EUR",
}

// NewECBAdapter creates an ECB adapter from its source config
func NewECBAdapter(cfg SourceConfig) *ECBAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ECBBaseURL
	}
	return &ECBAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *ECBAdapter) Source() string {
	return SourceECB
}

func (a *ECBAdapter) Initialize() error {
	return nil
}

func (a *ECBAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(ecbUnits, input)
}

func (a *ECBAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceECB, indicatorName)
	if err != nil {
		return nil, err
	}

	// Series IDs are stored as "FLOW/SERIES.KEY", matching the data portal
	// URL layout.
	flow, key, found := strings.Cut(spec.SeriesID, "/")
	if !found {
		return nil, NewConfigurationError(SourceECB, "series_id", fmt.Sprintf("%q is not in FLOW/KEY form", spec.SeriesID))
	}

	params := url.Values{}
	params.Set("format", "jsondata")
	params.Set("lastNObservations", strconv.Itoa(a.cfg.FetchLimit))

	endpoint := fmt.Sprintf("%s/%s/%s?%s", a.cfg.BaseURL, flow, key, params.Encode())
	body, err := httpGetJSON(ctx, a.client, SourceECB, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var payload ECBSeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceECB, Reason: "failed to parse SDMX payload", Cause: err}
	}
	if len(payload.DataSets) == 0 {
		return nil, &UpstreamError{Source: SourceECB, Reason: "payload contains no data sets"}
	}

	timeValues, err := observationTimes(payload.Structure.Dimensions.Observation)
	if err != nil {
		return nil, err
	}

	var points []Observation
	for _, series := range payload.DataSets[0].Series {
		for index, obs := range series.Observations {
			i, err := strconv.Atoi(index)
			if err != nil || i < 0 || i >= len(timeValues) {
				continue
			}
			if len(obs) == 0 {
				continue
			}
			value, ok := obs[0].(float64)
			if !ok {
				continue
			}
			date, ok := parseSDMXDate(timeValues[i])
			if !ok {
				continue
			}
			points = append(points, Observation{
				Date:  date,
				Value: decimal.NewFromFloat(value),
				Raw:   rawJSON(map[string]interface{}{"period": timeValues[i], "value": value}),
			})
		}
	}
	if points == nil {
		points = []Observation{}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.After(points[j].Date) })
	return points, nil
}

// observationTimes extracts the TIME_PERIOD dimension values in index order
func observationTimes(dimensions []ECBDimension) ([]string, error) {
	for _, dim := range dimensions {
		if dim.ID != "TIME_PERIOD" {
			continue
		}
		values := make([]string, len(dim.Values))
		for i, v := range dim.Values {
			values[i] = v.ID
		}
		return values, nil
	}
	return nil, &UpstreamError{Source: SourceECB, Reason: "payload is missing the TIME_PERIOD dimension"}
}

// parseSDMXDate parses the period formats the data portal emits: daily
// (2024-01-15), monthly (2024-01), quarterly (2024-Q1) and annual (2024).
func parseSDMXDate(period string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", period); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01", period); err == nil {
		return t, true
	}
	if year, quarter, found := strings.Cut(period, "-Q"); found {
		y, err := strconv.Atoi(year)
		if err != nil {
			return time.Time{}, false
		}
		q, err := strconv.Atoi(quarter)
		if err != nil || q < 1 || q > 4 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	}
	if y, err := strconv.Atoi(period); err == nil && y > 1000 {
		return yearDate(y), true
	}
	return time.Time{}, false
}
