package datastore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econsync/models"
)

func TestNewMongoMirrorDisabledWithoutURI(t *testing.T) {
	mirror, err := NewMongoMirror("", "econsync")
	require.NoError(t, err)
	assert.Nil(t, mirror)
	assert.NoError(t, mirror.Close(), "closing a disabled mirror is a no-op")
}

func TestSeriesDocument(t *testing.T) {
	ind := models.Indicator{Name: "Unemployment Rate", Source: "FRED", Unit: "%"}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	points := []models.DataPoint{
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Value: decimal.RequireFromString("3.9")},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: decimal.RequireFromString("3.7")},
	}

	doc := seriesDocument(ind, points, now)
	assert.Equal(t, "Unemployment Rate", doc.Name)
	assert.Equal(t, "FRED", doc.Source)
	assert.Equal(t, "%", doc.Unit)
	assert.Equal(t, now, doc.UpdatedAt)
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Points, 2)
	assert.Equal(t, "3.9", doc.Points[0].Value, "decimal values mirror as strings")
	assert.Equal(t, "3.7", doc.Points[1].Value)
}

func TestSeriesDocumentEmptySeries(t *testing.T) {
	doc := seriesDocument(models.Indicator{Name: "Real GDP"}, nil, time.Now())
	assert.Equal(t, 0, doc.Count)
	assert.NotNil(t, doc.Points)
	assert.Empty(t, doc.Points)
}
