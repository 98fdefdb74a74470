package engine

import (
	"context"
	"strings"

	"github.com/mdejong/budgeteer/internal/model"
	"github.com/mdejong/budgeteer/internal/service"
)

// Stats aggregates audit-log statistics over a rolling window.
type Stats struct {
	TotalAutoApplied  int
	TotalUndone       int
	UndoRate          float64
	AverageConfidence float64
	AboveThreshold    bool
	WindowDays        int
}

// Monitor summarizes how automation is behaving so a rising undo rate
// surfaces before trust erodes.
type Monitor struct {
	storage        service.Storage
	alertThreshold float64
}

// NewMonitor creates a monitor with the given undo-rate alert threshold.
func NewMonitor(storage service.Storage, alertThreshold float64) *Monitor {
	return &Monitor{storage: storage, alertThreshold: alertThreshold}
}

// Stats computes automation statistics over the last windowDays days.
//
// The alert fires only when the undo rate is strictly greater than the
// threshold; a rate exactly at the threshold does not alert.
func (m *Monitor) Stats(ctx context.Context, windowDays int) (*Stats, error) {
	entries, err := m.storage.AuditEntriesInWindow(ctx, windowDays)
	if err != nil {
		return nil, err
	}

	stats := &Stats{WindowDays: windowDays}
	var confidenceSum float64
	var confidenceCount int

	for i := range entries {
		entry := &entries[i]

		if entry.AutoApplied {
			stats.TotalAutoApplied++
			if entry.Confidence != nil {
				confidenceSum += *entry.Confidence
				confidenceCount++
			}
		}

		if entry.Action == model.ActionUndo && strings.HasPrefix(entry.Reason, undoReasonPrefix) {
			stats.TotalUndone++
		}
	}

	if stats.TotalAutoApplied > 0 {
		stats.UndoRate = float64(stats.TotalUndone) / float64(stats.TotalAutoApplied)
	}
	if confidenceCount > 0 {
		stats.AverageConfidence = confidenceSum / float64(confidenceCount)
	}
	stats.AboveThreshold = stats.UndoRate > m.alertThreshold

	return stats, nil
}

// UndoRateAlert reports whether the undo rate over the window exceeds the
// alert threshold.
func (m *Monitor) UndoRateAlert(ctx context.Context, windowDays int) (bool, error) {
	stats, err := m.Stats(ctx, windowDays)
	if err != nil {
		return false, err
	}
	return stats.AboveThreshold, nil
}
