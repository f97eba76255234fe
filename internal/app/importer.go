package app

import (
	"context"
	"fmt"
	"time"

	"github.com/productpraat/catalog-importer/internal/config"
	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/internal/importer"
	"github.com/productpraat/catalog-importer/internal/logger"
	"github.com/productpraat/catalog-importer/internal/storage"
	"github.com/productpraat/catalog-importer/pkg/catalog"
	"github.com/productpraat/catalog-importer/pkg/categories"
	"github.com/productpraat/catalog-importer/pkg/publishers"
)

// Importer is the one-shot import job runtime. It wires the category
// registry, catalog client, orchestrator, product store, and event
// publishers, runs a single import, and persists the result.
type Importer struct {
	cfg          *config.Config
	registry     *categories.Registry
	orchestrator *importer.Orchestrator
	store        storage.Store
	fanout       *publishers.Fanout
}

// NewImporter builds the import runtime from config.
func NewImporter(ctx context.Context, cfg *config.Config) (*Importer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoObj("category registry loaded", "categories_meta", map[string]any{
		"count": registry.Len(),
		"keys":  registry.Keys(),
	})

	client := catalog.New(catalog.Config{
		BaseURL:        cfg.CatalogBaseURL,
		AuthURL:        cfg.CatalogAuthURL,
		ClientID:       cfg.CatalogClientID,
		ClientSecret:   cfg.CatalogClientSecret,
		StaticToken:    cfg.CatalogToken,
		CountryCode:    cfg.CatalogCountry,
		AcceptLanguage: cfg.CatalogLanguage,
		Timeout:        cfg.CatalogTimeout,
	}, nil)

	engine := importer.NewEngine(importer.NewFetcher(client), registry)

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	fanout, err := loadPublishers(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Importer{
		cfg:          cfg,
		registry:     registry,
		orchestrator: importer.NewOrchestrator(engine, registry),
		store:        store,
		fanout:       fanout,
	}, nil
}

// Run executes one import job, saves the deduplicated products, and publishes
// lifecycle events. Per-category failures are reported through the result,
// not as an error.
func (imp *Importer) Run(ctx context.Context) (domain.ImportResult, error) {
	if imp == nil || imp.orchestrator == nil {
		return domain.ImportResult{}, fmt.Errorf("importer is not initialized")
	}
	defer imp.closeStore()

	start := time.Now()
	logger.InfoObj("import started", "import_meta", map[string]any{
		"categories":  imp.registry.Len(),
		"concurrency": imp.cfg.ImportConcurrency,
		"page_size":   imp.cfg.ImportPageSize,
		"started_at":  start.UTC(),
	})

	result := imp.orchestrator.Run(ctx, importer.RunConfig{
		PerCategoryLimit: imp.cfg.ImportPageSize,
		Concurrency:      imp.cfg.ImportConcurrency,
		Pacing:           imp.cfg.ImportPacing,
		OnProgress:       imp.trackProgress(ctx),
	})

	saved, err := imp.store.SaveProducts(result.Products)
	if err != nil {
		return result, fmt.Errorf("save products: %w", err)
	}
	logger.InfoObj("products saved", "save_result", map[string]any{
		"saved": saved,
	})

	imp.publish(ctx, publishers.NewRunEvent(result))

	return result, nil
}

// trackProgress returns the progress callback: it logs every transition and
// publishes an event when a category reaches a terminal state. The callback
// runs at the engine's single-threaded chunk boundaries.
func (imp *Importer) trackProgress(ctx context.Context) importer.ProgressFunc {
	published := make(map[string]bool)

	return func(progress []domain.ImportProgress) {
		for _, p := range progress {
			if !p.Status.Terminal() || published[p.CategoryKey] {
				continue
			}
			published[p.CategoryKey] = true

			logger.InfoObj("category finished", "category_progress", map[string]any{
				"category_key": p.CategoryKey,
				"status":       string(p.Status),
				"imported":     p.ImportedCount,
				"error":        p.Error,
			})
			imp.publish(ctx, publishers.NewCategoryEvent(p))
		}
	}
}

func (imp *Importer) publish(ctx context.Context, evt publishers.Event) {
	if imp.fanout == nil || imp.fanout.Size() == 0 {
		return
	}
	if _, err := imp.fanout.Publish(ctx, evt); err != nil {
		logger.ErrorObj("event publish failed", "publish_error", map[string]any{
			"event_type": evt.Type,
			"error":      err.Error(),
		})
	}
}

func (imp *Importer) closeStore() {
	if imp == nil || imp.store == nil {
		return
	}
	if err := imp.store.Close(); err != nil {
		logger.ErrorObj("storage close failed", "error", err)
	}
}

func loadRegistry(cfg *config.Config) (*categories.Registry, error) {
	if cfg.CategoriesFile == "" {
		return categories.Default(), nil
	}
	registry, err := categories.LoadFile(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories registry: %w", err)
	}
	return registry, nil
}

func loadPublishers(ctx context.Context, cfg *config.Config) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, zapPublisherLogger{})
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	logger.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// zapPublisherLogger bridges the package-level logger to the publishers.Logger surface.
type zapPublisherLogger struct{}

func (zapPublisherLogger) InfoObj(msg, key string, obj interface{})  { logger.InfoObj(msg, key, obj) }
func (zapPublisherLogger) DebugObj(msg, key string, obj interface{}) { logger.DebugObj(msg, key, obj) }
func (zapPublisherLogger) WarnObj(msg, key string, obj interface{})  { logger.WarnObj(msg, key, obj) }
func (zapPublisherLogger) ErrorObj(msg, key string, obj interface{}) { logger.ErrorObj(msg, key, obj) }
