package datastore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"econsync/models"
)

// PersistenceError wraps a database failure with the operation that hit it
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// IsPersistenceError reports whether err is a PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IndicatorSummary is one row of the sync status report
type IndicatorSummary struct {
	Indicator       string     `json:"indicator"`
	Source          string     `json:"source"`
	Unit            string     `json:"unit"`
	IsActive        bool       `json:"is_active"`
	LastUpdate      *time.Time `json:"last_update,omitempty"`
	TotalDataPoints int64      `json:"total_data_points"`
}

// Store persists indicators and their data points
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertIndicator inserts the indicator or refreshes its metadata. Existing
// rows keep their ID, creation time and active flag so operator toggles
// survive catalog refreshes. Returns true when a new row was inserted.
func (s *Store) UpsertIndicator(ind *models.Indicator) (bool, error) {
	var existing models.Indicator
	err := s.db.Where("name = ?", ind.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(ind).Error; err != nil {
			return false, &PersistenceError{Op: "create indicator", Cause: err}
		}
		return true, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "find indicator", Cause: err}
	}

	ind.ID = existing.ID
	ind.CreatedAt = existing.CreatedAt
	ind.IsActive = existing.IsActive
	if err := s.db.Save(ind).Error; err != nil {
		return false, &PersistenceError{Op: "update indicator", Cause: err}
	}
	return false, nil
}

// GetIndicatorByName finds one indicator by its canonical name. Passes
// gorm.ErrRecordNotFound through so callers can distinguish a miss from a
// database failure.
func (s *Store) GetIndicatorByName(name string) (*models.Indicator, error) {
	var ind models.Indicator
	err := s.db.Where("name = ?", name).First(&ind).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find indicator", Cause: err}
	}
	return &ind, nil
}

// ListActiveIndicators returns active indicators, optionally filtered to
// one source. An empty source returns all of them.
func (s *Store) ListActiveIndicators(source string) ([]models.Indicator, error) {
	query := s.db.Where("is_active = ?", true)
	if source != "" {
		query = query.Where("source = ?", source)
	}
	var indicators []models.Indicator
	if err := query.Order("source, name").Find(&indicators).Error; err != nil {
		return nil, &PersistenceError{Op: "list indicators", Cause: err}
	}
	return indicators, nil
}

// SetIndicatorActive flips the sync flag for one indicator
func (s *Store) SetIndicatorActive(name string, active bool) error {
	result := s.db.Model(&models.Indicator{}).Where("name = ?", name).Update("is_active", active)
	if result.Error != nil {
		return &PersistenceError{Op: "update indicator", Cause: result.Error}
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertDataPoint writes one observation, updating the value in place when
// the (indicator, date) pair already exists. Returns true when a new row
// was inserted. The write itself relies on the unique index, so concurrent
// writers cannot duplicate a pair; only the created flag is best effort.
func (s *Store) UpsertDataPoint(point *models.DataPoint) (bool, error) {
	var count int64
	err := s.db.Model(&models.DataPoint{}).
		Where("indicator_id = ? AND date = ?", point.IndicatorID, point.Date).
		Count(&count).Error
	if err != nil {
		return false, &PersistenceError{Op: "count data points", Cause: err}
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "indicator_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "raw_data", "updated_at"}),
	}).Create(point).Error
	if err != nil {
		return false, &PersistenceError{Op: "upsert data point", Cause: err}
	}
	return count == 0, nil
}

// UpsertDataPoints writes a batch of observations for one indicator and
// reports how many rows were inserted versus refreshed
func (s *Store) UpsertDataPoints(points []models.DataPoint) (created, updated int, err error) {
	for i := range points {
		inserted, err := s.UpsertDataPoint(&points[i])
		if err != nil {
			return created, updated, err
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

// CountDataPoints returns the stored observation count for one indicator
func (s *Store) CountDataPoints(indicatorID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.DataPoint{}).Where("indicator_id = ?", indicatorID).Count(&count).Error
	if err != nil {
		return 0, &PersistenceError{Op: "count data points", Cause: err}
	}
	return count, nil
}

// LatestDataPoint returns the newest observation for one indicator, or nil
// when none are stored yet
func (s *Store) LatestDataPoint(indicatorID uint) (*models.DataPoint, error) {
	var point models.DataPoint
	err := s.db.Where("indicator_id = ?", indicatorID).Order("date DESC").First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find data point", Cause: err}
	}
	return &point, nil
}

// DataPointsInRange returns observations for one indicator between from and
// to inclusive, oldest first
func (s *Store) DataPointsInRange(indicatorID uint, from, to time.Time) ([]models.DataPoint, error) {
	var points []models.DataPoint
	err := s.db.Where("indicator_id = ? AND date BETWEEN ? AND ?", indicatorID, from, to).
		Order("date").Find(&points).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list data points", Cause: err}
	}
	return points, nil
}

// SyncSummaries reports per-indicator freshness: the newest observation
// date and the stored row count for every registered indicator
func (s *Store) SyncSummaries() ([]IndicatorSummary, error) {
	var indicators []models.Indicator
	if err := s.db.Order("source, name").Find(&indicators).Error; err != nil {
		return nil, &PersistenceError{Op: "list indicators", Cause: err}
	}

	summaries := make([]IndicatorSummary, 0, len(indicators))
	for _, ind := range indicators {
		summary := IndicatorSummary{
			Indicator: ind.Name,
			Source:    ind.Source,
			Unit:      ind.Unit,
			IsActive:  ind.IsActive,
		}
		count, err := s.CountDataPoints(ind.ID)
		if err != nil {
			return nil, err
		}
		summary.TotalDataPoints = count

		latest, err := s.LatestDataPoint(ind.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			date := latest.Date
			summary.LastUpdate = &date
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
