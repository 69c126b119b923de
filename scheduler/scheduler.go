package scheduler

// Package scheduler provides scheduled sync management for the ingestion core.
// It handles:
// - Per-source cron jobs staggered around provider release windows
// - A weekly full sync across every source
// - Hard timeouts and bounded retries around each run
// - Manual triggers and status reporting
//
// The main scheduler is implemented in jobs.go
