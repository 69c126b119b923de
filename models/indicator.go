package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Indicator represents a canonical economic time series
type Indicator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Source    string    `gorm:"index" json:"source"` // FRED, ALPHAVANTAGE, BLS, ...
	Category  string    `json:"category"`            // employment, inflation, growth, ...
	Frequency string    `json:"frequency"`           // daily, weekly, monthly, quarterly, annual
	Unit      string    `json:"unit"`                // canonical unit after normalization
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DataPoint represents one dated observation of an indicator.
// The (indicator_id, date) pair is unique; repeated syncs update in place.
type DataPoint struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	IndicatorID uint            `gorm:"uniqueIndex:idx_indicator_date;not null" json:"indicator_id"`
	Indicator   Indicator       `gorm:"foreignKey:IndicatorID" json:"indicator,omitempty"`
	Date        time.Time       `gorm:"uniqueIndex:idx_indicator_date;not null" json:"date"`
	Value       decimal.Decimal `gorm:"type:decimal(20,6)" json:"value"`
	RawData     string          `gorm:"type:text" json:"raw_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MigrateIndicatorModels runs database migrations for indicator models
func MigrateIndicatorModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Indicator{},
		&DataPoint{},
	)
}
