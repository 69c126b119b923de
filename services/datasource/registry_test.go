package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSourcesComplete(t *testing.T) {
	assert.Equal(t, []string{
		SourceAlphaVantage,
		SourceBLS,
		SourceECB,
		SourceFRED,
		SourceIMF,
		SourceRapidAPI,
		SourceSEC,
		SourceTreasury,
		SourceWorldBank,
	}, CatalogSources())
}

func TestLookupFindsIndicator(t *testing.T) {
	spec, ok := Lookup(SourceFRED, "Unemployment Rate")
	require.True(t, ok)
	assert.Equal(t, "UNRATE", spec.SeriesID)
	assert.Equal(t, SourceFRED, spec.Source)
	assert.Equal(t, "monthly", spec.Frequency)
}

func TestLookupMisses(t *testing.T) {
	_, ok := Lookup(SourceFRED, "No Such Indicator")
	assert.False(t, ok)

	_, ok = Lookup("NOT_A_SOURCE", "Unemployment Rate")
	assert.False(t, ok)
}

func TestCatalogStampsSource(t *testing.T) {
	for _, spec := range Catalog(SourceBLS) {
		assert.Equal(t, SourceBLS, spec.Source)
	}
	assert.Nil(t, Catalog("NOT_A_SOURCE"))
}

func TestIndicatorNamesAreGloballyUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, spec := range AllIndicators() {
		if owner, dup := seen[spec.Name]; dup {
			t.Fatalf("indicator %q declared by both %s and %s", spec.Name, owner, spec.Source)
		}
		seen[spec.Name] = spec.Source
	}
}

func TestCatalogEntriesAreComplete(t *testing.T) {
	specs := AllIndicators()
	require.NotEmpty(t, specs)
	for _, spec := range specs {
		assert.NotEmpty(t, spec.Name)
		assert.NotEmpty(t, spec.Source)
		assert.NotEmpty(t, spec.SeriesID)
		assert.NotEmpty(t, spec.Category, "indicator %s", spec.Name)
		assert.NotEmpty(t, spec.Frequency, "indicator %s", spec.Name)
		assert.NotEmpty(t, spec.Unit, "indicator %s", spec.Name)
	}
}

func TestTreasuryEntriesDeclareValueField(t *testing.T) {
	for _, spec := range Catalog(SourceTreasury) {
		assert.NotEmpty(t, spec.ValueField, "indicator %s", spec.Name)
	}
}
