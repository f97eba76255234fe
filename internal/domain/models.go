package domain

// Domain contains core models shared across the import pipeline.

// CatalogProduct is one product as surfaced by the upstream catalog.
// Immutable after construction except for SourceCategories, which grows
// when the same product is seen under additional categories.
type CatalogProduct struct {
	ExternalID        string   `json:"external_id"`
	Title             string   `json:"title"`
	Brand             string   `json:"brand,omitempty"`
	PriceMinor        int64    `json:"price_minor,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	OfferAvailability string   `json:"offer_availability,omitempty"`
	RatingAverage     float64  `json:"rating_average,omitempty"`
	RatingCount       int      `json:"rating_count,omitempty"`
	SourceCategories  []string `json:"source_categories,omitempty"`
}

// ImportStatus tracks a category's lifecycle within one import run.
// Transitions only move forward: Pending -> InProgress -> Completed|Failed.
type ImportStatus string

const (
	StatusPending    ImportStatus = "pending"
	StatusInProgress ImportStatus = "in_progress"
	StatusCompleted  ImportStatus = "completed"
	StatusFailed     ImportStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s ImportStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ImportProgress is the per-category progress entry. The full ordered list
// is the payload of every progress callback invocation.
type ImportProgress struct {
	CategoryKey   string       `json:"category_key"`
	DisplayName   string       `json:"display_name"`
	Status        ImportStatus `json:"status"`
	TargetCount   int          `json:"target_count"`
	ImportedCount int          `json:"imported_count"`
	FailedCount   int          `json:"failed_count"`
	Error         string       `json:"error,omitempty"`
}

// ImportResult is built once at job completion.
// Products carries the deduplicated, first-seen-ordered product list so the
// caller can hand it to its persistence boundary.
type ImportResult struct {
	Success       bool             `json:"success"`
	Categories    []ImportProgress `json:"categories"`
	Products      []CatalogProduct `json:"products"`
	TotalImported int              `json:"total_imported"`
	TotalFailed   int              `json:"total_failed"`
	DurationMs    int64            `json:"duration_ms"`
}
