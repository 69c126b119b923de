package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"econsync/models"
	"econsync/services/datasource"
	"econsync/services/datastore"
)

// Orchestrator runs indicator syncs: fetch through the adapter factory,
// persist through the store, and optionally mirror to MongoDB. Failures in
// one indicator never abort the rest of a batch.
type Orchestrator struct {
	store   *datastore.Store
	factory *datasource.Factory
	limiter *datasource.RateLimiter
	mirror  *datastore.MongoMirror
}

// NewOrchestrator wires the sync pipeline. The mirror may be nil when
// MongoDB replication is disabled.
func NewOrchestrator(store *datastore.Store, factory *datasource.Factory, limiter *datasource.RateLimiter, mirror *datastore.MongoMirror) *Orchestrator {
	return &Orchestrator{
		store:   store,
		factory: factory,
		limiter: limiter,
		mirror:  mirror,
	}
}

// BootstrapIndicators registers every catalog indicator in the database,
// standardizing units through the owning adapter. Safe to run on every
// boot; existing rows keep their operator settings.
func (o *Orchestrator) BootstrapIndicators() (int, error) {
	specs := datasource.AllIndicators()
	created := 0
	for _, spec := range specs {
		ind := models.Indicator{
			Name:      spec.Name,
			Source:    spec.Source,
			Category:  spec.Category,
			Frequency: spec.Frequency,
			Unit:      o.factory.StandardizeUnit(spec.Source, spec.Unit),
			IsActive:  true,
		}
		inserted, err := o.store.UpsertIndicator(&ind)
		if err != nil {
			return created, fmt.Errorf("failed to register indicator %s: %w", spec.Name, err)
		}
		if inserted {
			created++
		}
	}
	log.Printf("[sync] registered %d indicators (%d new)", len(specs), created)
	return created, nil
}

// SyncIndicator syncs one indicator by its canonical name. The returned
// error covers name resolution only; fetch and persist failures land in
// the result with Success false.
func (o *Orchestrator) SyncIndicator(ctx context.Context, name string) (SyncResult, error) {
	ind, err := o.store.GetIndicatorByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SyncResult{}, fmt.Errorf("%w: no indicator named %q", datasource.ErrConfigNotFound, name)
	}
	if err != nil {
		return SyncResult{}, err
	}

	result, points := o.syncOne(ctx, *ind)
	if result.Success && o.mirror != nil {
		if err := o.mirror.SaveSeries(*ind, points); err != nil {
			log.Printf("[sync] mirror failed for %s: %v", ind.Name, err)
		}
	}
	return result, nil
}

// FetchAndStoreIndicatorData syncs one indicator and reports its outcome
// as an error
func (o *Orchestrator) FetchAndStoreIndicatorData(ctx context.Context, name string) error {
	result, err := o.SyncIndicator(ctx, name)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("sync failed for %s: %s", name, result.Error)
	}
	return nil
}

// SyncBatch syncs a set of indicators sequentially. An empty source syncs
// every active indicator; otherwise only that source's. Explicit names
// override the active filter, with the source filter still applied when
// both are present. The returned error covers enumeration and
// cancellation; per-indicator failures land in the results.
func (o *Orchestrator) SyncBatch(ctx context.Context, source string, names []string) ([]SyncResult, error) {
	indicators, results, err := o.resolveBatch(source, names)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snapshots := make([]datastore.SeriesSnapshot, 0, len(indicators))
	for _, ind := range indicators {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result, points := o.syncOne(ctx, ind)
		results = append(results, result)
		if result.Success {
			snapshots = append(snapshots, datastore.SeriesSnapshot{Indicator: ind, Points: points})
		}
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	log.Printf("[sync] batch complete: %d/%d succeeded in %s", succeeded, len(results), time.Since(start).Round(time.Millisecond))

	o.mirrorBatch(snapshots)
	return results, nil
}

// LastSyncStatus reports per-indicator freshness from the store
func (o *Orchestrator) LastSyncStatus() ([]datastore.IndicatorSummary, error) {
	return o.store.SyncSummaries()
}

// resolveBatch turns the source and name filters into indicator rows.
// Names that resolve to nothing become failed results up front.
func (o *Orchestrator) resolveBatch(source string, names []string) ([]models.Indicator, []SyncResult, error) {
	if len(names) == 0 {
		indicators, err := o.store.ListActiveIndicators(source)
		if err != nil {
			return nil, nil, err
		}
		return indicators, []SyncResult{}, nil
	}

	indicators := make([]models.Indicator, 0, len(names))
	results := make([]SyncResult, 0)
	for _, name := range names {
		ind, err := o.store.GetIndicatorByName(name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			results = append(results, failedResult(name, source, fmt.Errorf("%w: no indicator named %q", datasource.ErrConfigNotFound, name)))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if source != "" && ind.Source != source {
			continue
		}
		indicators = append(indicators, *ind)
	}
	return indicators, results, nil
}

// syncOne runs the fetch-standardize-persist pipeline for one indicator
func (o *Orchestrator) syncOne(ctx context.Context, ind models.Indicator) (SyncResult, []models.DataPoint) {
	start := time.Now()
	result := SyncResult{
		Indicator: ind.Name,
		Source:    ind.Source,
		SyncedAt:  start,
	}

	fail := func(err error) (SyncResult, []models.DataPoint) {
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		log.Printf("[sync] %s (%s) failed: %v", ind.Name, ind.Source, err)
		return result, nil
	}

	if err := o.limiter.Acquire(ctx, ind.Source); err != nil {
		return fail(err)
	}

	observations, err := o.factory.FetchData(ctx, ind.Source, ind.Name)
	if err != nil {
		return fail(err)
	}

	points := make([]models.DataPoint, 0, len(observations))
	for _, obs := range observations {
		points = append(points, models.DataPoint{
			IndicatorID: ind.ID,
			Date:        obs.Date,
			Value:       obs.Value,
			RawData:     obs.Raw,
		})
	}

	created, updated, err := o.store.UpsertDataPoints(points)
	if err != nil {
		return fail(err)
	}

	result.Success = true
	result.DataPoints = len(points)
	result.Created = created
	result.Updated = updated
	result.DurationMs = time.Since(start).Milliseconds()
	log.Printf("[sync] %s (%s): %d points (%d new, %d updated) in %dms",
		ind.Name, ind.Source, result.DataPoints, created, updated, result.DurationMs)
	return result, points
}

// mirrorBatch replicates successful series and the status summary. Mirror
// failures are logged and never fail the sync.
func (o *Orchestrator) mirrorBatch(snapshots []datastore.SeriesSnapshot) {
	if o.mirror == nil || len(snapshots) == 0 {
		return
	}
	if err := o.mirror.SaveAllSeries(snapshots); err != nil {
		log.Printf("[sync] batch mirror failed: %v", err)
		return
	}
	summaries, err := o.store.SyncSummaries()
	if err != nil {
		log.Printf("[sync] status summary failed: %v", err)
		return
	}
	if err := o.mirror.SaveSyncStatus(summaries); err != nil {
		log.Printf("[sync] status mirror failed: %v", err)
	}
}
