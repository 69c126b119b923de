package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"econsync/services/syncer"
)

// SyncJob is the reportable state of one scheduled job. Held in memory
// only; state is lost on restart.
type SyncJob struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Schedule     string     `json:"schedule"`
	State        string     `json:"state"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastResult   string     `json:"last_result,omitempty"`
	RetryAttempt int        `json:"retry_attempt"`
	DurationMs   int64      `json:"duration_ms"`
	Error        string     `json:"error,omitempty"`
	SkippedRuns  int        `json:"skipped_runs"`
	LastSkipped  *time.Time `json:"last_skipped,omitempty"`
}

// RunRecord is one entry of the run history
type RunRecord struct {
	JobID      string            `json:"job_id"`
	Source     string            `json:"source"`
	Trigger    string            `json:"trigger"`
	Result     string            `json:"result"`
	Attempts   int               `json:"attempts"`
	Stats      syncer.BatchStats `json:"stats"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMs int64             `json:"duration_ms"`
}

// jobState guards one job's mutable status
type jobState struct {
	mu      sync.Mutex
	job     SyncJob
	running bool
}

func newJobState(source, schedule string) *jobState {
	return &jobState{
		job: SyncJob{
			ID:       uuid.NewString(),
			Source:   source,
			Schedule: schedule,
			State:    StateIdle,
		},
	}
}

// tryStart claims the job for a run. A job that is already running stays
// untouched apart from its skip counters, and false is returned.
func (j *jobState) tryStart() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		j.job.SkippedRuns++
		now := time.Now()
		j.job.LastSkipped = &now
		return false
	}
	j.running = true
	now := time.Now()
	j.job.State = StateRunning
	j.job.LastRun = &now
	j.job.RetryAttempt = 0
	j.job.Error = ""
	return true
}

func (j *jobState) markRetrying(attempt int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.job.State = StateRetrying
	j.job.RetryAttempt = attempt
}

// finish releases the job and records the run outcome
func (j *jobState) finish(result string, durationMs int64, errText string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
	j.job.State = StateIdle
	j.job.LastResult = result
	j.job.DurationMs = durationMs
	j.job.Error = errText
}

func (j *jobState) snapshot() SyncJob {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.job
}

// runLog is a bounded history of run records, newest first
type runLog struct {
	mu      sync.Mutex
	entries []RunRecord
	size    int
}

func newRunLog(size int) *runLog {
	return &runLog{size: size}
}

func (l *runLog) add(record RunRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]RunRecord{record}, l.entries...)
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
}

func (l *runLog) list() []RunRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RunRecord, len(l.entries))
	copy(out, l.entries)
	return out
}
