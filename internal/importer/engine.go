package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/internal/logger"
	"github.com/productpraat/catalog-importer/pkg/catalog"
	"github.com/productpraat/catalog-importer/pkg/categories"
)

const (
	// DefaultConcurrency bounds the number of in-flight upstream requests.
	DefaultConcurrency = 3
	// DefaultPacing is the fixed delay between chunks, keeping the sustained
	// request rate upstream-friendly.
	DefaultPacing = 500 * time.Millisecond
	// NoPacing disables the inter-chunk delay entirely.
	NoPacing = time.Duration(-1)

	defaultPerCategoryLimit = 10
)

// ErrAllCategoriesFailed is returned when no category in the run succeeded.
var ErrAllCategoriesFailed = errors.New("all categories failed")

// CategoryFetcher fetches one category. Satisfied by *Fetcher.
type CategoryFetcher interface {
	FetchCategory(ctx context.Context, entry categories.Entry, limit int) CategoryFetchOutcome
}

// EngineOptions tunes one engine run. Zero values take the defaults above;
// NoPacing (or any negative Pacing) disables the inter-chunk delay.
type EngineOptions struct {
	PerCategoryLimit int
	Concurrency      int
	Pacing           time.Duration
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.PerCategoryLimit <= 0 {
		o.PerCategoryLimit = defaultPerCategoryLimit
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Pacing == 0 {
		o.Pacing = DefaultPacing
	} else if o.Pacing < 0 {
		o.Pacing = 0
	}
	return o
}

// EngineHooks observe a run. Both hooks fire from the engine's own goroutine
// at chunk boundaries, so implementations need no locking.
type EngineHooks struct {
	// OnDispatch fires once per chunk, just before its fetches start.
	OnDispatch func(keys []string)
	// OnOutcome fires at the chunk join point, once per category in chunk order.
	OnOutcome func(outcome CategoryFetchOutcome)
}

// BatchResult aggregates one engine run. Products is deduplicated by
// external id in first-seen order; Outcomes follows the input key order.
type BatchResult struct {
	Products []domain.CatalogProduct
	Outcomes []CategoryFetchOutcome
}

// Engine drives the category fetcher over an ordered key list with bounded
// concurrency, global cross-category deduplication, and inter-chunk pacing.
type Engine struct {
	fetcher  CategoryFetcher
	registry *categories.Registry
	pause    func(ctx context.Context, d time.Duration)
}

// NewEngine builds a batch import engine.
func NewEngine(fetcher CategoryFetcher, registry *categories.Registry) *Engine {
	return &Engine{
		fetcher:  fetcher,
		registry: registry,
		pause:    sleepWithContext,
	}
}

// Run partitions keys into consecutive chunks of opts.Concurrency, fetches
// each chunk's categories in parallel, and paces between chunks (never after
// the last). A cancelled context stops scheduling new chunks; in-flight
// fetches of the current chunk finish and the partial result is returned
// with the context's error.
func (e *Engine) Run(ctx context.Context, keys []string, opts EngineOptions, hooks EngineHooks) (BatchResult, error) {
	opts = opts.withDefaults()

	result := BatchResult{
		Outcomes: make([]CategoryFetchOutcome, 0, len(keys)),
	}
	seen := make(map[string]int)

	for start := 0; start < len(keys); start += opts.Concurrency {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if start > 0 && opts.Pacing > 0 {
			e.pause(ctx, opts.Pacing)
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		end := start + opts.Concurrency
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		if hooks.OnDispatch != nil {
			hooks.OnDispatch(chunk)
		}

		outcomes := e.fetchChunk(ctx, chunk, opts.PerCategoryLimit)

		// Single-threaded join point: dedup-set and output mutations happen
		// only here, between chunks.
		for _, outcome := range outcomes {
			mergeOutcome(&result, seen, outcome)
			if hooks.OnOutcome != nil {
				hooks.OnOutcome(outcome)
			}
			if outcome.Failed() {
				logger.WarnObj("category fetch failed", "category_error", map[string]any{
					"category_key": outcome.CategoryKey,
					"kind":         string(outcome.Err.Kind),
					"error":        outcome.Err.Error(),
				})
			}
		}
	}

	if len(keys) > 0 && allFailed(result.Outcomes) {
		return result, ErrAllCategoriesFailed
	}
	return result, nil
}

// fetchChunk runs the fetch for each key of one chunk in parallel and returns
// the outcomes in chunk order.
func (e *Engine) fetchChunk(ctx context.Context, chunk []string, limit int) []CategoryFetchOutcome {
	outcomes := make([]CategoryFetchOutcome, len(chunk))

	var wg sync.WaitGroup
	for i, key := range chunk {
		entry, ok := e.registry.Resolve(key)
		if !ok {
			outcomes[i] = CategoryFetchOutcome{
				CategoryKey: key,
				Err: &catalog.APIError{
					Kind:    catalog.KindNotFound,
					Message: fmt.Sprintf("category %q is not registered", key),
				},
			}
			continue
		}

		wg.Add(1)
		go func(i int, entry categories.Entry) {
			defer wg.Done()
			outcomes[i] = e.fetcher.FetchCategory(ctx, entry, limit)
		}(i, entry)
	}
	wg.Wait()

	return outcomes
}

// mergeOutcome folds one category outcome into the running result. The first
// category to surface a product owns it; later occurrences only append their
// category key to the owner's SourceCategories.
func mergeOutcome(result *BatchResult, seen map[string]int, outcome CategoryFetchOutcome) {
	if !outcome.Failed() {
		for _, product := range outcome.Products {
			if idx, ok := seen[product.ExternalID]; ok {
				owner := &result.Products[idx]
				if !containsString(owner.SourceCategories, outcome.CategoryKey) {
					owner.SourceCategories = append(owner.SourceCategories, outcome.CategoryKey)
				}
				continue
			}
			product.SourceCategories = []string{outcome.CategoryKey}
			seen[product.ExternalID] = len(result.Products)
			result.Products = append(result.Products, product)
		}
	}
	result.Outcomes = append(result.Outcomes, outcome)
}

func allFailed(outcomes []CategoryFetchOutcome) bool {
	for _, outcome := range outcomes {
		if !outcome.Failed() {
			return false
		}
	}
	return true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
