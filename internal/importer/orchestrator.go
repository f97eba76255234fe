package importer

import (
	"context"
	"strings"
	"time"

	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/internal/logger"
	"github.com/productpraat/catalog-importer/pkg/categories"
)

// ProgressFunc receives the full ordered progress list after every discrete
// state change.
type ProgressFunc func(progress []domain.ImportProgress)

// RunConfig specifies one import job.
type RunConfig struct {
	// CategoryKeys selects the categories to import. Empty means all
	// registered keys in registry order.
	CategoryKeys []string
	// PerCategoryLimit is the products-per-category target.
	PerCategoryLimit int
	// Concurrency bounds in-flight upstream requests. Zero or one runs
	// categories sequentially, the safety-first default.
	Concurrency int
	// Pacing is the delay between chunks. Zero takes the engine default;
	// NoPacing disables the delay.
	Pacing time.Duration
	// OnProgress, when set, is invoked after every category transition and
	// once with the initial full snapshot.
	OnProgress ProgressFunc
}

// Orchestrator is the pipeline entry point. It always delegates the batch to
// the engine; the sequential mode is simply concurrency 1, so both modes
// share one progress-construction path.
type Orchestrator struct {
	engine   *Engine
	registry *categories.Registry
}

// NewOrchestrator wires the orchestrator over an engine and its registry.
func NewOrchestrator(engine *Engine, registry *categories.Registry) *Orchestrator {
	return &Orchestrator{engine: engine, registry: registry}
}

// Run executes one import job and returns the aggregated result. Category
// failures are captured as data, never returned as an error; the result only
// signals them through Success=false and TotalFailed.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) domain.ImportResult {
	start := time.Now()

	keys := cfg.CategoryKeys
	if len(keys) == 0 {
		keys = o.registry.Keys()
	}
	limit := cfg.PerCategoryLimit
	if limit <= 0 {
		limit = defaultPerCategoryLimit
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	progress := make([]domain.ImportProgress, len(keys))
	position := make(map[string]int, len(keys))
	for i, key := range keys {
		displayName := key
		if entry, ok := o.registry.Resolve(key); ok {
			displayName = entry.DisplayName
		}
		progress[i] = domain.ImportProgress{
			CategoryKey: key,
			DisplayName: displayName,
			Status:      domain.StatusPending,
			TargetCount: limit,
		}
		if _, exists := position[progressKey(key)]; !exists {
			position[progressKey(key)] = i
		}
	}

	emit := func() {
		if cfg.OnProgress == nil {
			return
		}
		snapshot := make([]domain.ImportProgress, len(progress))
		copy(snapshot, progress)
		cfg.OnProgress(snapshot)
	}

	// Initial snapshot with every category pending.
	emit()

	// Hooks fire at single-threaded chunk boundaries, so mutating the
	// progress list here needs no locking.
	hooks := EngineHooks{
		OnDispatch: func(chunk []string) {
			for _, key := range chunk {
				i, ok := position[progressKey(key)]
				if !ok {
					continue
				}
				progress[i].Status = domain.StatusInProgress
				emit()
			}
		},
		OnOutcome: func(outcome CategoryFetchOutcome) {
			i, ok := position[progressKey(outcome.CategoryKey)]
			if !ok {
				return
			}
			if outcome.Failed() {
				progress[i].Status = domain.StatusFailed
				progress[i].FailedCount = 1
				progress[i].Error = outcome.Err.Error()
			} else {
				progress[i].Status = domain.StatusCompleted
				progress[i].ImportedCount = len(outcome.Products)
			}
			emit()
		},
	}

	batch, err := o.engine.Run(ctx, keys, EngineOptions{
		PerCategoryLimit: limit,
		Concurrency:      concurrency,
		Pacing:           cfg.Pacing,
	}, hooks)

	totalFailed := 0
	for _, p := range progress {
		totalFailed += p.FailedCount
	}

	result := domain.ImportResult{
		Success:       totalFailed == 0 && err == nil,
		Categories:    progress,
		Products:      batch.Products,
		TotalImported: len(batch.Products),
		TotalFailed:   totalFailed,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	logger.InfoObj("import run finished", "import_summary", map[string]any{
		"categories":     len(keys),
		"total_imported": result.TotalImported,
		"total_failed":   result.TotalFailed,
		"success":        result.Success,
		"duration_ms":    result.DurationMs,
	})

	return result
}

// progressKey matches the registry's case-insensitive key handling.
func progressKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
