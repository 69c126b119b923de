package syncer

import "time"

// SyncResult reports the outcome of one indicator sync
type SyncResult struct {
	Indicator  string    `json:"indicator"`
	Source     string    `json:"source"`
	Success    bool      `json:"success"`
	DataPoints int       `json:"data_points"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	SyncedAt   time.Time `json:"synced_at"`
}

// BatchStats aggregates the results of one batch run
type BatchStats struct {
	Total      int `json:"total"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	DataPoints int `json:"data_points"`
}

// Summarize folds batch results into counters
func Summarize(results []SyncResult) BatchStats {
	stats := BatchStats{Total: len(results)}
	for _, result := range results {
		if result.Success {
			stats.Succeeded++
			stats.DataPoints += result.DataPoints
		} else {
			stats.Failed++
		}
	}
	return stats
}

// AllFailed reports whether a non-empty batch produced no successes.
// Empty batches are not failures; a source with nothing to sync is fine.
func AllFailed(results []SyncResult) bool {
	stats := Summarize(results)
	return stats.Total > 0 && stats.Succeeded == 0
}

func failedResult(name, source string, err error) SyncResult {
	return SyncResult{
		Indicator: name,
		Source:    source,
		Error:     err.Error(),
		SyncedAt:  time.Now(),
	}
}
