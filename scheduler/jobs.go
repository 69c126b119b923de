package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"econsync/services/datasource"
	"econsync/services/syncer"
)

// Job states
const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateRetrying = "retrying"
)

// Run results
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultTimeout = "timeout"
)

// Run triggers
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// SourceAll is the pseudo source whose job syncs the whole catalog
const SourceAll = "all"

// ScheduleManual marks jobs that only run on explicit triggers
const ScheduleManual = "manual"

var (
	// ErrSyncRunning is returned when a trigger lands on a busy job
	ErrSyncRunning = errors.New("sync already in progress")

	// ErrJobTimeout marks a run that exceeded the job timeout
	ErrJobTimeout = errors.New("sync job timed out")
)

// sourceSchedules staggers provider syncs around their release windows.
// All times are UTC.
var sourceSchedules = map[string]string{
	datasource.SourceFRED:         "0 6 * * *",
	datasource.SourceAlphaVantage: "30 6 * * *",
	datasource.SourceBLS:          "0 14 * * *", // BLS releases land at 08:30 ET
	datasource.SourceWorldBank:    "0 2 * * 1",
	datasource.SourceECB:          "15 16 * * *", // after the ~16:00 CET reference rate
	datasource.SourceIMF:          "0 3 * * 1",
	datasource.SourceTreasury:     "0 7 * * *",
	datasource.SourceSEC:          "0 5 * * 0",
	datasource.SourceRapidAPI:     "45 6 * * *",
}

// fullSyncSchedule runs the whole catalog weekly
const fullSyncSchedule = "0 0 * * 0"

// defaultSchedule covers sources without a tuned slot
const defaultSchedule = "0 8 * * *"

func scheduleFor(source string) string {
	if schedule, ok := sourceSchedules[source]; ok {
		return schedule
	}
	return defaultSchedule
}

// Syncer is the slice of the sync orchestrator the scheduler drives
type Syncer interface {
	SyncBatch(ctx context.Context, source string, names []string) ([]syncer.SyncResult, error)
}

// Options tunes job execution
type Options struct {
	JobTimeout    time.Duration // hard cap on one sync attempt
	MaxRetries    int           // total attempts per scheduled run
	RetryDelay    time.Duration // base delay, doubled per retry
	ResultLogSize int           // retained run records
}

func (o Options) withDefaults() Options {
	if o.JobTimeout <= 0 {
		o.JobTimeout = 10 * time.Minute
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 30 * time.Second
	}
	if o.ResultLogSize <= 0 {
		o.ResultLogSize = 50
	}
	return o
}

// TriggerResult reports whether a manual sync request was accepted
type TriggerResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Status is a point-in-time snapshot of the scheduler
type Status struct {
	Enabled  bool        `json:"enabled"`
	JobCount int         `json:"job_count"`
	Jobs     []SyncJob   `json:"jobs"`
	Results  []RunRecord `json:"results"`
}

// Scheduler manages the sync jobs
type Scheduler struct {
	cron *gocron.Scheduler
	sync Syncer
	opts Options

	mu      sync.Mutex
	jobs    map[string]*jobState
	started bool

	runs *runLog
}

// NewScheduler creates a scheduler with one job per source plus the full
// catalog job
func NewScheduler(sync Syncer, sources []string, opts Options) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		cron: gocron.NewScheduler(time.UTC),
		sync: sync,
		opts: opts,
		jobs: make(map[string]*jobState),
		runs: newRunLog(opts.ResultLogSize),
	}
	for _, source := range sources {
		s.jobs[source] = newJobState(source, scheduleFor(source))
	}
	s.jobs[SourceAll] = newJobState(SourceAll, fullSyncSchedule)
	return s
}

// Start registers the cron jobs and begins running them
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	log.Println("Starting sync scheduler...")

	for source, state := range s.jobs {
		schedule := state.snapshot().Schedule
		if schedule == ScheduleManual {
			continue
		}
		s.cron.Cron(schedule).Do(func() {
			s.runJob(source, TriggerCron)
		})
	}

	s.cron.StartAsync()
	s.started = true
	log.Printf("Sync scheduler started with %d jobs", len(s.jobs))
}

// Stop halts the cron runner. In-flight runs finish on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cron.Stop()
	s.started = false
	log.Println("Sync scheduler stopped")
}

// TriggerSync starts a manual sync and returns without waiting for it. An
// empty source triggers the full catalog job. Manual runs make a single
// attempt; the retry machine only backs scheduled runs.
func (s *Scheduler) TriggerSync(source string) TriggerResult {
	if source == "" {
		source = SourceAll
	}
	state := s.lookupOrCreate(source)
	if state == nil {
		return TriggerResult{Error: fmt.Sprintf("unknown source: %s", source)}
	}
	if !state.tryStart() {
		return TriggerResult{Error: ErrSyncRunning.Error()}
	}

	go s.runStarted(state, source, TriggerManual)
	return TriggerResult{Success: true, Output: fmt.Sprintf("sync started for %s", source)}
}

// Status reports every job and the recent run history
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	jobs := make([]SyncJob, 0, len(s.jobs))
	for _, state := range s.jobs {
		jobs = append(jobs, state.snapshot())
	}
	enabled := s.started
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Source < jobs[j].Source })

	return Status{
		Enabled:  enabled,
		JobCount: len(jobs),
		Jobs:     jobs,
		Results:  s.runs.list(),
	}
}

// runJob is the cron entry point for one source
func (s *Scheduler) runJob(source, trigger string) {
	state := s.jobState(source)
	if state == nil {
		return
	}
	if !state.tryStart() {
		log.Printf("[scheduler] %s sync still running, skipping %s trigger", source, trigger)
		return
	}
	s.runStarted(state, source, trigger)
}

// runStarted executes a claimed job through the attempt loop and records
// the outcome. The caller must have won tryStart.
func (s *Scheduler) runStarted(state *jobState, source, trigger string) {
	startedAt := time.Now()
	record := RunRecord{
		JobID:     state.snapshot().ID,
		Source:    source,
		Trigger:   trigger,
		StartedAt: startedAt,
	}

	maxAttempts := 1
	if trigger == TriggerCron {
		maxAttempts = s.opts.MaxRetries
	}

	var result string
	var stats syncer.BatchStats
	var errText string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := s.opts.RetryDelay * time.Duration(1<<(attempt-1))
			log.Printf("[scheduler] retrying %s sync in %s (attempt %d/%d)", source, delay, attempt+1, maxAttempts)
			state.markRetrying(attempt)
			time.Sleep(delay)
		}
		result, stats, errText = s.runOnce(source)
		record.Attempts = attempt + 1
		if result == ResultSuccess {
			break
		}
	}

	durationMs := time.Since(startedAt).Milliseconds()
	state.finish(result, durationMs, errText)

	record.Result = result
	record.Stats = stats
	record.Error = errText
	record.DurationMs = durationMs
	s.runs.add(record)

	if result == ResultSuccess {
		log.Printf("[scheduler] %s sync finished: %d/%d indicators in %dms", source, stats.Succeeded, stats.Total, durationMs)
	} else {
		log.Printf("[scheduler] %s sync %s after %d attempts: %s", source, result, record.Attempts, errText)
	}
}

// runOnce executes a single sync attempt under the job timeout. The batch
// is abandoned once the deadline passes; its context stops the remaining
// indicators.
func (s *Scheduler) runOnce(source string) (string, syncer.BatchStats, string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
	defer cancel()

	batchSource := source
	if source == SourceAll {
		batchSource = ""
	}

	type batchOutcome struct {
		results []syncer.SyncResult
		err     error
	}
	done := make(chan batchOutcome, 1)
	go func() {
		results, err := s.sync.SyncBatch(ctx, batchSource, nil)
		done <- batchOutcome{results: results, err: err}
	}()

	select {
	case <-ctx.Done():
		return ResultTimeout, syncer.BatchStats{}, ErrJobTimeout.Error()
	case outcome := <-done:
		stats := syncer.Summarize(outcome.results)
		if outcome.err != nil {
			if errors.Is(outcome.err, context.DeadlineExceeded) {
				return ResultTimeout, stats, ErrJobTimeout.Error()
			}
			return ResultFailed, stats, outcome.err.Error()
		}
		if syncer.AllFailed(outcome.results) {
			return ResultFailed, stats, "all indicators failed"
		}
		return ResultSuccess, stats, ""
	}
}

func (s *Scheduler) jobState(source string) *jobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[source]
}

// lookupOrCreate finds the job for a source, lazily creating a manual-only
// job for catalog sources without a cron slot
func (s *Scheduler) lookupOrCreate(source string) *jobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.jobs[source]; ok {
		return state
	}
	if source != SourceAll && len(datasource.Catalog(source)) == 0 {
		return nil
	}
	state := newJobState(source, ScheduleManual)
	s.jobs[source] = state
	return state
}
