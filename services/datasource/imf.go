package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IMFBaseURL is the IMF DataMapper API root
const IMFBaseURL = "https://www.imf.org/external/datamapper/api/v1"

// IMFAdapter fetches annual series from the IMF DataMapper API. No
// credentials are required.
type IMFAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// IMFSeriesResponse maps series id to country to year to value
type IMFSeriesResponse struct {
	Values map[string]map[string]map[string]float64 `json:"values"`
}

var imfUnits = map[string]string{
	"Percent change":        "%",
	"Percent of GDP":        "% of GDP",
	"Percent":               "%",
	"Annual percent change": "%",
	"U.S. dollars Billions": "USD Billions",
}

// NewIMFAdapter creates an IMF adapter from its source config
func NewIMFAdapter(cfg SourceConfig) *IMFAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = IMFBaseURL
	}
	return &IMFAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *IMFAdapter) Source() string {
	return SourceIMF
}

func (a *IMFAdapter) Initialize() error {
	return nil
}

func (a *IMFAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(imfUnits, input)
}

func (a *IMFAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceIMF, indicatorName)
	if err != nil {
		return nil, err
	}

	// Series IDs are stored as "SERIES/COUNTRY", matching the DataMapper
	// URL layout.
	series, country, found := strings.Cut(spec.SeriesID, "/")
	if !found {
		return nil, NewConfigurationError(SourceIMF, "series_id", fmt.Sprintf("%q is not in SERIES/COUNTRY form", spec.SeriesID))
	}

	endpoint := fmt.Sprintf("%s/%s/%s", a.cfg.BaseURL, series, country)
	body, err := httpGetJSON(ctx, a.client, SourceIMF, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var payload IMFSeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceIMF, Reason: "failed to parse DataMapper payload", Cause: err}
	}

	byCountry, ok := payload.Values[series]
	if !ok {
		return nil, &UpstreamError{Source: SourceIMF, Reason: fmt.Sprintf("payload is missing series %s", series)}
	}
	byYear, ok := byCountry[country]
	if !ok {
		return nil, &UpstreamError{Source: SourceIMF, Reason: fmt.Sprintf("series %s has no data for %s", series, country)}
	}

	// DataMapper series run past the present with WEO projections; only
	// settled years are kept.
	currentYear := time.Now().UTC().Year()
	points := make([]Observation, 0, len(byYear))
	for yearText, value := range byYear {
		year, err := strconv.Atoi(yearText)
		if err != nil || year > currentYear {
			continue
		}
		points = append(points, Observation{
			Date:  yearDate(year),
			Value: decimal.NewFromFloat(value),
			Raw:   rawJSON(map[string]interface{}{"year": yearText, "value": value}),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.After(points[j].Date) })
	return points, nil
}
