package publishers

import (
	"time"

	"github.com/productpraat/catalog-importer/internal/domain"
)

// Event types emitted during an import run.
const (
	EventCategoryCompleted = "category_completed"
	EventCategoryFailed    = "category_failed"
	EventRunCompleted      = "run_completed"
)

// Event represents the payload published downstream.
type Event struct {
	Type        string    `json:"type"`
	CategoryKey string    `json:"category_key,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Imported    int       `json:"imported"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
	Success     bool      `json:"success"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewCategoryEvent constructs an Event for a terminal category transition.
func NewCategoryEvent(progress domain.ImportProgress) Event {
	evtType := EventCategoryCompleted
	if progress.Status == domain.StatusFailed {
		evtType = EventCategoryFailed
	}
	return Event{
		Type:        evtType,
		CategoryKey: progress.CategoryKey,
		DisplayName: progress.DisplayName,
		Imported:    progress.ImportedCount,
		Failed:      progress.FailedCount,
		Error:       progress.Error,
		Success:     progress.Status == domain.StatusCompleted,
		OccurredAt:  time.Now().UTC(),
	}
}

// NewRunEvent constructs the run summary Event.
func NewRunEvent(result domain.ImportResult) Event {
	return Event{
		Type:       EventRunCompleted,
		Imported:   result.TotalImported,
		Failed:     result.TotalFailed,
		Success:    result.Success,
		DurationMs: result.DurationMs,
		OccurredAt: time.Now().UTC(),
	}
}
