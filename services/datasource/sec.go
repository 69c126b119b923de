package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SECBaseURL is the SEC XBRL data API root
const SECBaseURL = "https://data.sec.gov/api/xbrl"

// SECAdapter fetches company concept series from the SEC XBRL data API.
// The API is keyless but rejects requests without a declared User-Agent
// contact, so one is required at initialization.
type SECAdapter struct {
	cfg    SourceConfig
	client *http.Client
}

// SECCompanyConcept is the companyconcept payload for one tag
type SECCompanyConcept struct {
	CIK        int                  `json:"cik"`
	Taxonomy   string               `json:"taxonomy"`
	Tag        string               `json:"tag"`
	Label      string               `json:"label"`
	EntityName string               `json:"entityName"`
	Units      map[string][]SECFact `json:"units"`
}

// SECFact is one reported fact for a company concept
type SECFact struct {
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

var secUnits = map[string]string{
	"USD":        "USD",
	"USD/shares": "USD per Share",
	"shares":     "Shares",
	"pure":       "Ratio",
}

// NewSECAdapter creates an SEC adapter from its source config
func NewSECAdapter(cfg SourceConfig) *SECAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = SECBaseURL
	}
	return &SECAdapter{cfg: cfg, client: newHTTPClient()}
}

func (a *SECAdapter) Source() string {
	return SourceSEC
}

func (a *SECAdapter) Initialize() error {
	if a.cfg.UserAgent == "" {
		return NewConfigurationError(SourceSEC, "user_agent", "SEC requires a contact User-Agent header")
	}
	return nil
}

func (a *SECAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(secUnits, input)
}

func (a *SECAdapter) FetchData(ctx context.Context, indicatorName string) ([]Observation, error) {
	spec, err := lookupOrConfigError(SourceSEC, indicatorName)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/companyconcept/%s.json", a.cfg.BaseURL, spec.SeriesID)
	headers := map[string]string{"User-Agent": a.cfg.UserAgent}
	body, err := httpGetJSON(ctx, a.client, SourceSEC, endpoint, headers)
	if err != nil {
		return nil, err
	}

	var payload SECCompanyConcept
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Source: SourceSEC, Reason: "failed to parse company concept payload", Cause: err}
	}
	if len(payload.Units) == 0 {
		return nil, &UpstreamError{Source: SourceSEC, Reason: "company concept payload has no units"}
	}

	facts := selectUnitFacts(payload.Units)

	// Facts repeat across filings; the frame field marks the canonical
	// fact for each reporting period.
	framed := make([]SECFact, 0, len(facts))
	for _, fact := range facts {
		if fact.Frame == "" {
			continue
		}
		framed = append(framed, fact)
	}
	sort.Slice(framed, func(i, j int) bool { return framed[i].End > framed[j].End })
	if a.cfg.FetchLimit > 0 && len(framed) > a.cfg.FetchLimit {
		framed = framed[:a.cfg.FetchLimit]
	}

	points := make([]Observation, 0, len(framed))
	for _, fact := range framed {
		date, err := time.Parse("2006-01-02", fact.End)
		if err != nil {
			continue
		}
		points = append(points, Observation{
			Date:  date,
			Value: decimal.NewFromFloat(fact.Val),
			Raw:   rawJSON(fact),
		})
	}
	return points, nil
}

// selectUnitFacts prefers the USD series and falls back to the first unit
// key in sorted order
func selectUnitFacts(units map[string][]SECFact) []SECFact {
	if facts, ok := units["USD"]; ok {
		return facts
	}
	keys := make([]string, 0, len(units))
	for key := range units {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return units[keys[0]]
}
