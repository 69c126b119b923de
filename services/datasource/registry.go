package datasource

import "sort"

// Source tags identifying each external provider
const (
	SourceFRED         = "FRED"
	SourceAlphaVantage = "ALPHAVANTAGE"
	SourceBLS          = "BLS"
	SourceWorldBank    = "WORLDBANK"
	SourceECB          = "ECB"
	SourceIMF          = "IMF"
	SourceTreasury     = "TREASURY"
	SourceSEC          = "SEC"
	SourceRapidAPI     = "RAPIDAPI"
)

// IndicatorSpec declares one indicator in a source catalog
type IndicatorSpec struct {
	Name      string // canonical indicator name, unique across all sources
	Source    string // provider tag, stamped by the catalog accessors
	SeriesID  string // provider-specific series identifier
	Category  string
	Frequency string
	Unit      string // canonical unit hint
	// ValueField names the JSON field holding the observation value for
	// providers whose payloads are dataset-shaped (Treasury fiscal data)
	ValueField string
}

// catalogs maps each source to its declared indicators. Series identifiers
// follow the provider's own addressing scheme: FRED/BLS series IDs, WorldBank
// indicator codes, ECB flow/key paths, IMF datamapper series/country, Treasury
// fiscal-service endpoint paths, SEC CIK/taxonomy/tag paths.
var catalogs = map[string][]IndicatorSpec{
	SourceFRED: {
		{Name: "Unemployment Rate", SeriesID: "UNRATE", Category: "employment", Frequency: "monthly", Unit: "%"},
		{Name: "Consumer Price Index", SeriesID: "CPIAUCSL", Category: "inflation", Frequency: "monthly", Unit: "Index"},
		{Name: "Federal Funds Rate", SeriesID: "FEDFUNDS", Category: "interest_rates", Frequency: "monthly", Unit: "%"},
		{Name: "Real GDP", SeriesID: "GDPC1", Category: "growth", Frequency: "quarterly", Unit: "USD Billions"},
		{Name: "10-Year Treasury Yield", SeriesID: "DGS10", Category: "interest_rates", Frequency: "daily", Unit: "%"},
		{Name: "30-Year Mortgage Rate", SeriesID: "MORTGAGE30US", Category: "interest_rates", Frequency: "weekly", Unit: "%"},
		{Name: "Industrial Production Index", SeriesID: "INDPRO", Category: "growth", Frequency: "monthly", Unit: "Index"},
		{Name: "Retail Sales", SeriesID: "RSAFS", Category: "consumption", Frequency: "monthly", Unit: "USD Millions"},
	},
	SourceAlphaVantage: {
		{Name: "Real GDP per Capita", SeriesID: "REAL_GDP_PER_CAPITA", Category: "growth", Frequency: "quarterly", Unit: "USD"},
		{Name: "Inflation Rate", SeriesID: "INFLATION", Category: "inflation", Frequency: "annual", Unit: "%"},
		{Name: "Consumer Sentiment", SeriesID: "CONSUMER_SENTIMENT", Category: "sentiment", Frequency: "monthly", Unit: "Index"},
		{Name: "Durable Goods Orders", SeriesID: "DURABLES", Category: "manufacturing", Frequency: "monthly", Unit: "USD Millions"},
		{Name: "Nonfarm Payroll", SeriesID: "NONFARM_PAYROLL", Category: "employment", Frequency: "monthly", Unit: "Thousands of Persons"},
	},
	SourceBLS: {
		{Name: "CPI All Urban Consumers", SeriesID: "CUUR0000SA0", Category: "inflation", Frequency: "monthly", Unit: "Index"},
		{Name: "Producer Price Index", SeriesID: "WPUFD4", Category: "inflation", Frequency: "monthly", Unit: "Index"},
		{Name: "Labor Force Participation Rate", SeriesID: "LNS11300000", Category: "employment", Frequency: "monthly", Unit: "%"},
		{Name: "Average Hourly Earnings", SeriesID: "CES0500000003", Category: "employment", Frequency: "monthly", Unit: "USD"},
	},
	SourceWorldBank: {
		{Name: "GDP Current USD", SeriesID: "NY.GDP.MKTP.CD", Category: "growth", Frequency: "annual", Unit: "USD"},
		{Name: "GDP Growth Rate", SeriesID: "NY.GDP.MKTP.KD.ZG", Category: "growth", Frequency: "annual", Unit: "%"},
		{Name: "Inflation Consumer Prices", SeriesID: "FP.CPI.TOTL.ZG", Category: "inflation", Frequency: "annual", Unit: "%"},
		{Name: "Foreign Direct Investment", SeriesID: "BX.KLT.DINV.CD.WD", Category: "trade", Frequency: "annual", Unit: "USD"},
	},
	SourceECB: {
		{Name: "EUR/USD Exchange Rate", SeriesID: "EXR/D.USD.EUR.SP00.A", Category: "exchange_rates", Frequency: "daily", Unit: "USD per EUR"},
		{Name: "ECB Deposit Facility Rate", SeriesID: "FM/D.U2.EUR.4F.KR.DFR.LEV", Category: "interest_rates", Frequency: "daily", Unit: "%"},
		{Name: "Euro Area Inflation", SeriesID: "ICP/M.U2.N.000000.4.ANR", Category: "inflation", Frequency: "monthly", Unit: "%"},
	},
	SourceIMF: {
		{Name: "Real GDP Growth", SeriesID: "NGDP_RPCH/USA", Category: "growth", Frequency: "annual", Unit: "%"},
		{Name: "Government Gross Debt", SeriesID: "GGXWDG_NGDP/USA", Category: "fiscal", Frequency: "annual", Unit: "% of GDP"},
		{Name: "Current Account Balance", SeriesID: "BCA_NGDPD/USA", Category: "trade", Frequency: "annual", Unit: "% of GDP"},
	},
	SourceTreasury: {
		{Name: "Average Interest Rate on US Debt", SeriesID: "v2/accounting/od/avg_interest_rates", Category: "interest_rates", Frequency: "monthly", Unit: "%", ValueField: "avg_interest_rate_amt"},
		{Name: "Federal Debt Total", SeriesID: "v2/accounting/od/debt_to_penny", Category: "fiscal", Frequency: "daily", Unit: "USD", ValueField: "tot_pub_debt_out_amt"},
		{Name: "Treasury Operating Cash Balance", SeriesID: "v1/accounting/dts/operating_cash_balance", Category: "fiscal", Frequency: "daily", Unit: "USD Millions", ValueField: "open_today_bal"},
	},
	SourceSEC: {
		{Name: "Apple Revenue", SeriesID: "CIK0000320193/us-gaap/Revenues", Category: "corporate", Frequency: "quarterly", Unit: "USD"},
		{Name: "Microsoft Net Income", SeriesID: "CIK0000789019/us-gaap/NetIncomeLoss", Category: "corporate", Frequency: "quarterly", Unit: "USD"},
	},
	SourceRapidAPI: {
		{Name: "US Consumer Confidence", SeriesID: "consumer-confidence", Category: "sentiment", Frequency: "monthly", Unit: "Index"},
		{Name: "US Housing Starts", SeriesID: "housing-starts", Category: "housing", Frequency: "monthly", Unit: "Thousands of Units"},
	},
}

// CatalogSources returns the source tags that declare indicators, sorted
func CatalogSources() []string {
	sources := make([]string, 0, len(catalogs))
	for source := range catalogs {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Catalog returns the declared indicators for a source with the Source field
// stamped. Unknown sources return nil.
func Catalog(source string) []IndicatorSpec {
	specs, ok := catalogs[source]
	if !ok {
		return nil
	}
	out := make([]IndicatorSpec, len(specs))
	for i, spec := range specs {
		spec.Source = source
		out[i] = spec
	}
	return out
}

// Lookup finds the catalog entry for an indicator within one source
func Lookup(source, name string) (IndicatorSpec, bool) {
	for _, spec := range catalogs[source] {
		if spec.Name == name {
			spec.Source = source
			return spec, true
		}
	}
	return IndicatorSpec{}, false
}

// AllIndicators returns every declared indicator across all catalogs,
// ordered by source then declaration order
func AllIndicators() []IndicatorSpec {
	var all []IndicatorSpec
	for _, source := range CatalogSources() {
		all = append(all, Catalog(source)...)
	}
	return all
}
