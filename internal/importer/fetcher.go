package importer

import (
	"context"
	"errors"

	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/pkg/catalog"
	"github.com/productpraat/catalog-importer/pkg/categories"
)

// CatalogAPI is the subset of the catalog client the fetcher needs.
type CatalogAPI interface {
	PopularByCategory(ctx context.Context, categoryID string, pageSize int) (catalog.ProductPage, error)
	SearchByTerm(ctx context.Context, term string, pageSize int, includeRelevantCategories bool) (catalog.ProductPage, error)
}

// CategoryFetchOutcome is the result of fetching one category in one run.
type CategoryFetchOutcome struct {
	CategoryKey  string
	UpstreamID   string
	Products     []domain.CatalogProduct
	UsedFallback bool
	Err          *catalog.APIError
	HTTPStatus   int
}

// Failed reports whether the category ended in error.
func (o CategoryFetchOutcome) Failed() bool { return o.Err != nil }

// Fetcher retrieves the products for a single category, trying the direct
// category-id endpoint first and falling back to free-text search.
type Fetcher struct {
	api CatalogAPI
}

// NewFetcher builds a category fetcher on top of the catalog API.
func NewFetcher(api CatalogAPI) *Fetcher {
	return &Fetcher{api: api}
}

// FetchCategory runs the two-tier fetch for one category entry.
//
// The direct path is only attempted when the entry carries an upstream id.
// An empty direct result or a fallback-eligible error moves on to the search
// term; a terminal direct error (bad request) is returned as-is. When both
// paths fail, only the fallback's error is surfaced, wrapped as
// all-sources-exhausted. Zero products from both paths without an error is a
// valid upstream state and counts as success.
func (f *Fetcher) FetchCategory(ctx context.Context, entry categories.Entry, limit int) CategoryFetchOutcome {
	outcome := CategoryFetchOutcome{
		CategoryKey: entry.Key,
		UpstreamID:  entry.UpstreamID,
	}

	directFailed := false
	if entry.UpstreamID != "" {
		page, err := f.api.PopularByCategory(ctx, entry.UpstreamID, limit)
		if err == nil && len(page.Products) > 0 {
			outcome.Products = page.Products
			return outcome
		}
		if err != nil {
			apiErr := asAPIError(err)
			if !apiErr.Kind.FallbackEligible() {
				outcome.Err = apiErr
				outcome.HTTPStatus = apiErr.StatusCode
				return outcome
			}
			directFailed = true
		}
	}

	outcome.UsedFallback = true
	page, err := f.api.SearchByTerm(ctx, entry.FallbackTerm, limit, true)
	if err != nil {
		apiErr := asAPIError(err)
		outcome.HTTPStatus = apiErr.StatusCode
		if directFailed {
			outcome.Err = &catalog.APIError{
				Kind:       catalog.KindAllSourcesExhausted,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Err:        apiErr,
			}
		} else {
			outcome.Err = apiErr
		}
		return outcome
	}

	outcome.Products = page.Products
	return outcome
}

// asAPIError coerces any error into the catalog taxonomy. Errors without a
// classification (decode failures and the like) are treated as unreachable.
func asAPIError(err error) *catalog.APIError {
	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &catalog.APIError{
		Kind:    catalog.KindUnreachable,
		Message: err.Error(),
		Err:     err,
	}
}
