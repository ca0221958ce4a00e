// Package store persists the unified dataset of record and a summary row
// per pipeline run.
package store

import (
	"context"
	"time"

	"autotrade/internal/model"
)

// RunSummary is the per-run bookkeeping row: when the pipeline ran and
// what the stage counters were.
type RunSummary struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	TradeRecords     int
	EconRecords      int
	UnifiedRecords   int
	UnmatchedPrimary int
}

type Store interface {
	// ReplaceUnified replaces the unified table in full and records the
	// run summary, atomically. Full replace mirrors the pipeline's
	// overwrite-on-rerun semantics.
	ReplaceUnified(ctx context.Context, run RunSummary, records []model.UnifiedRecord) error
	ListUnified(ctx context.Context) ([]model.UnifiedRecord, error)
	LastRun(ctx context.Context) (RunSummary, bool, error)
	Close() error
}

// NopStore is used when persistence is disabled (-db "").
type NopStore struct{}

func (s *NopStore) ReplaceUnified(ctx context.Context, run RunSummary, records []model.UnifiedRecord) error {
	_ = ctx
	_ = run
	_ = records
	return nil
}

func (s *NopStore) ListUnified(ctx context.Context) ([]model.UnifiedRecord, error) {
	_ = ctx
	return nil, nil
}

func (s *NopStore) LastRun(ctx context.Context) (RunSummary, bool, error) {
	_ = ctx
	return RunSummary{}, false, nil
}

func (s *NopStore) Close() error {
	return nil
}
