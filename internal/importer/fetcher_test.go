package importer

import (
	"context"
	"testing"

	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/pkg/catalog"
	"github.com/productpraat/catalog-importer/pkg/categories"
)

type fakeCatalogAPI struct {
	popularPage catalog.ProductPage
	popularErr  error
	searchPage  catalog.ProductPage
	searchErr   error

	popularCalls []string
	searchCalls  []string
}

func (f *fakeCatalogAPI) PopularByCategory(_ context.Context, categoryID string, _ int) (catalog.ProductPage, error) {
	f.popularCalls = append(f.popularCalls, categoryID)
	return f.popularPage, f.popularErr
}

func (f *fakeCatalogAPI) SearchByTerm(_ context.Context, term string, _ int, _ bool) (catalog.ProductPage, error) {
	f.searchCalls = append(f.searchCalls, term)
	return f.searchPage, f.searchErr
}

func products(ids ...string) []domain.CatalogProduct {
	out := make([]domain.CatalogProduct, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.CatalogProduct{ExternalID: id, Title: "product " + id})
	}
	return out
}

var testEntry = categories.Entry{
	Key:          "verzorging",
	UpstreamID:   "12442",
	FallbackTerm: "scheerapparaat",
	DisplayName:  "Persoonlijke verzorging",
}

func TestFetchCategoryDirectHit(t *testing.T) {
	api := &fakeCatalogAPI{popularPage: catalog.ProductPage{Products: products("1", "2")}}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if outcome.Failed() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if outcome.UsedFallback {
		t.Fatal("direct hit must not be marked as fallback")
	}
	if len(outcome.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(outcome.Products))
	}
	if len(api.searchCalls) != 0 {
		t.Fatal("search must not run after a direct hit")
	}
	if api.popularCalls[0] != "12442" {
		t.Fatalf("popular called with %s", api.popularCalls[0])
	}
}

func TestFetchCategoryFallsBackOnEmptyDirectResult(t *testing.T) {
	api := &fakeCatalogAPI{searchPage: catalog.ProductPage{Products: products("9")}}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if outcome.Failed() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if !outcome.UsedFallback {
		t.Fatal("expected fallback after empty direct result")
	}
	if len(outcome.Products) != 1 || outcome.Products[0].ExternalID != "9" {
		t.Fatalf("unexpected products: %#v", outcome.Products)
	}
	if api.searchCalls[0] != "scheerapparaat" {
		t.Fatalf("search called with %s", api.searchCalls[0])
	}
}

func TestFetchCategoryFallsBackOnEligibleError(t *testing.T) {
	api := &fakeCatalogAPI{
		popularErr: &catalog.APIError{Kind: catalog.KindServerUnavailable, StatusCode: 503},
		searchPage: catalog.ProductPage{Products: products("7")},
	}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if outcome.Failed() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if !outcome.UsedFallback {
		t.Fatal("expected fallback after server error")
	}
	if len(outcome.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(outcome.Products))
	}
}

func TestFetchCategoryBadRequestIsTerminal(t *testing.T) {
	api := &fakeCatalogAPI{
		popularErr: &catalog.APIError{Kind: catalog.KindBadRequest, StatusCode: 400, Message: "bad category id"},
	}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if !outcome.Failed() {
		t.Fatal("expected failure")
	}
	if outcome.Err.Kind != catalog.KindBadRequest {
		t.Fatalf("kind = %s", outcome.Err.Kind)
	}
	if outcome.UsedFallback {
		t.Fatal("bad request must not trigger fallback")
	}
	if len(api.searchCalls) != 0 {
		t.Fatal("search must not run after a terminal error")
	}
	if outcome.HTTPStatus != 400 {
		t.Fatalf("http status = %d", outcome.HTTPStatus)
	}
}

func TestFetchCategoryBothSourcesFail(t *testing.T) {
	searchErr := &catalog.APIError{Kind: catalog.KindUnreachable, Message: "dial tcp: connection refused"}
	api := &fakeCatalogAPI{
		popularErr: &catalog.APIError{Kind: catalog.KindNotFound, StatusCode: 404},
		searchErr:  searchErr,
	}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if !outcome.Failed() {
		t.Fatal("expected failure")
	}
	if outcome.Err.Kind != catalog.KindAllSourcesExhausted {
		t.Fatalf("kind = %s, want %s", outcome.Err.Kind, catalog.KindAllSourcesExhausted)
	}
	// The surfaced message reflects the fallback's error, not the direct one.
	if outcome.Err.Message != searchErr.Error() {
		t.Fatalf("message = %q", outcome.Err.Message)
	}
	if outcome.Err.Unwrap() != searchErr {
		t.Fatal("exhausted error must wrap the fallback error")
	}
}

func TestFetchCategoryFallbackOnlyError(t *testing.T) {
	searchErr := &catalog.APIError{Kind: catalog.KindServerUnavailable, StatusCode: 502}
	api := &fakeCatalogAPI{searchErr: searchErr}
	fetcher := NewFetcher(api)

	entry := categories.Entry{Key: "airfryers", FallbackTerm: "airfryer"}
	outcome := fetcher.FetchCategory(context.Background(), entry, 10)
	if !outcome.Failed() {
		t.Fatal("expected failure")
	}
	// Without a failed direct attempt the fallback error passes through as-is.
	if outcome.Err.Kind != catalog.KindServerUnavailable {
		t.Fatalf("kind = %s", outcome.Err.Kind)
	}
	if len(api.popularCalls) != 0 {
		t.Fatal("direct path must be skipped without an upstream id")
	}
}

func TestFetchCategoryBothEmptyIsSuccess(t *testing.T) {
	api := &fakeCatalogAPI{}
	fetcher := NewFetcher(api)

	outcome := fetcher.FetchCategory(context.Background(), testEntry, 10)
	if outcome.Failed() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if !outcome.UsedFallback {
		t.Fatal("empty direct result should have moved to fallback")
	}
	if len(outcome.Products) != 0 {
		t.Fatalf("products = %d, want 0", len(outcome.Products))
	}
}

func TestFetchCategoryCoercesUnknownErrors(t *testing.T) {
	api := &fakeCatalogAPI{searchErr: context.DeadlineExceeded}
	fetcher := NewFetcher(api)

	entry := categories.Entry{Key: "blenders", FallbackTerm: "blender"}
	outcome := fetcher.FetchCategory(context.Background(), entry, 10)
	if !outcome.Failed() {
		t.Fatal("expected failure")
	}
	if outcome.Err.Kind != catalog.KindUnreachable {
		t.Fatalf("kind = %s, want %s", outcome.Err.Kind, catalog.KindUnreachable)
	}
}
