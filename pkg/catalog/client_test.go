package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/productpraat/catalog-importer/pkg/httpclient"
)

const listBody = `{
	"totalResults": 2,
	"results": [
		{
			"ean": "8710103958556",
			"title": "Scheerapparaat X1",
			"brand": "Philips",
			"image": {"url": "https://img.example/x1.jpg"},
			"offer": {"price": 79.99, "availabilityDescription": "Op voorraad"},
			"rating": {"average": 4.5, "count": 812}
		},
		{
			"ean": "8710103958557",
			"title": "Scheerapparaat X2",
			"offer": {"price": 129.0}
		}
	]
}`

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:     baseURL,
		StaticToken: "test-token",
	}, httpclient.NewRestyClient(2*time.Second))
}

func TestPopularByCategoryMapsProducts(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listBody))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	page, err := client.PopularByCategory(context.Background(), "12442", 10)
	if err != nil {
		t.Fatalf("PopularByCategory: %v", err)
	}

	if gotReq.URL.Path != "/products/popular" {
		t.Fatalf("unexpected path %s", gotReq.URL.Path)
	}
	query := gotReq.URL.Query()
	if query.Get("category-id") != "12442" {
		t.Fatalf("category-id = %s", query.Get("category-id"))
	}
	if query.Get("country-code") != "NL" {
		t.Fatalf("country-code = %s", query.Get("country-code"))
	}
	if query.Get("page-size") != "10" {
		t.Fatalf("page-size = %s", query.Get("page-size"))
	}
	if got := gotReq.Header.Get("Accept-Language"); got != "nl" {
		t.Fatalf("Accept-Language = %s", got)
	}
	if got := gotReq.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Fatalf("Authorization = %s", got)
	}

	if page.TotalResults != 2 || len(page.Products) != 2 {
		t.Fatalf("unexpected page: total=%d products=%d", page.TotalResults, len(page.Products))
	}
	first := page.Products[0]
	if first.ExternalID != "8710103958556" {
		t.Fatalf("external id = %s", first.ExternalID)
	}
	if first.PriceMinor != 7999 {
		t.Fatalf("price minor = %d", first.PriceMinor)
	}
	if first.Currency != "EUR" {
		t.Fatalf("currency = %s", first.Currency)
	}
	if first.RatingAverage != 4.5 || first.RatingCount != 812 {
		t.Fatalf("rating = %v/%d", first.RatingAverage, first.RatingCount)
	}
}

func TestSearchByTermSetsSearchParams(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Write([]byte(`{"totalResults": 0, "results": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	page, err := client.SearchByTerm(context.Background(), "scheerapparaat", 10, true)
	if err != nil {
		t.Fatalf("SearchByTerm: %v", err)
	}
	if len(page.Products) != 0 {
		t.Fatalf("expected empty page")
	}

	if gotReq.URL.Path != "/products/search" {
		t.Fatalf("unexpected path %s", gotReq.URL.Path)
	}
	query := gotReq.URL.Query()
	if query.Get("search-term") != "scheerapparaat" {
		t.Fatalf("search-term = %s", query.Get("search-term"))
	}
	if query.Get("include-relevant-categories") != "true" {
		t.Fatalf("include-relevant-categories = %s", query.Get("include-relevant-categories"))
	}
}

func TestPageSizeIsClampedSilently(t *testing.T) {
	var gotPageSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPageSize = r.URL.Query().Get("page-size")
		w.Write([]byte(`{"totalResults": 0, "results": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.SearchByTerm(context.Background(), "airfryer", 500, false); err != nil {
		t.Fatalf("SearchByTerm: %v", err)
	}
	if gotPageSize != "50" {
		t.Fatalf("page-size = %s, want clamped 50", gotPageSize)
	}
}

func TestNon200SuccessStatusIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(`{"totalResults": 1, "results": [{"ean": "1", "title": "deel"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	page, err := client.SearchByTerm(context.Background(), "monitor", 10, false)
	if err != nil {
		t.Fatalf("2xx response must not be classified as an error: %v", err)
	}
	if len(page.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(page.Products))
	}
}

func TestStatusTranslation(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusNotFound, KindNotFound},
		{http.StatusServiceUnavailable, KindServerUnavailable},
		{http.StatusInternalServerError, KindServerUnavailable},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nee", tc.status)
		}))

		client := newTestClient(srv.URL)
		_, err := client.PopularByCategory(context.Background(), "12442", 10)
		srv.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected APIError, got %v", tc.status, err)
		}
		if apiErr.Kind != tc.want {
			t.Fatalf("status %d: kind = %s, want %s", tc.status, apiErr.Kind, tc.want)
		}
		if apiErr.StatusCode != tc.status {
			t.Fatalf("status %d: recorded status = %d", tc.status, apiErr.StatusCode)
		}
	}
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	client := newTestClient(srv.URL)
	_, err := client.SearchByTerm(context.Background(), "blender", 10, false)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != KindUnreachable {
		t.Fatalf("kind = %s, want %s", apiErr.Kind, KindUnreachable)
	}
	if apiErr.StatusCode != 0 {
		t.Fatalf("transport failure should carry no status, got %d", apiErr.StatusCode)
	}
}

func TestByExternalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/8710103958556" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ean": "8710103958556", "title": "Scheerapparaat X1"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	product, err := client.ByExternalID(context.Background(), "8710103958556")
	if err != nil {
		t.Fatalf("ByExternalID: %v", err)
	}
	if product.ExternalID != "8710103958556" || product.Title != "Scheerapparaat X1" {
		t.Fatalf("unexpected product: %#v", product)
	}
}

func TestProductsWithoutEANAreDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"totalResults": 2, "results": [{"title": "zonder ean"}, {"ean": "1", "title": "met ean"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	page, err := client.SearchByTerm(context.Background(), "iets", 10, false)
	if err != nil {
		t.Fatalf("SearchByTerm: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].ExternalID != "1" {
		t.Fatalf("expected only the ean-bearing product, got %#v", page.Products)
	}
}
