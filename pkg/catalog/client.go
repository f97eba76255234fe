package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/productpraat/catalog-importer/internal/domain"
	"github.com/productpraat/catalog-importer/pkg/httpclient"
)

const (
	// maxPageSize is the hard upstream page-size cap. Larger requests are
	// clamped silently rather than rejected.
	maxPageSize     = 50
	defaultPageSize = 10

	defaultTimeout = 12 * time.Second

	defaultBaseURL = "https://api.bol.com/marketing/catalog/v1"
	defaultAuthURL = "https://login.bol.com/token"
)

// Config holds the catalog client settings.
type Config struct {
	BaseURL string
	AuthURL string

	// OAuth2 client credentials. When set, the client fetches and refreshes
	// bearer tokens itself. StaticToken bypasses the token flow entirely.
	ClientID     string
	ClientSecret string
	StaticToken  string

	CountryCode    string
	AcceptLanguage string

	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.AuthURL) == "" {
		c.AuthURL = defaultAuthURL
	}
	if strings.TrimSpace(c.CountryCode) == "" {
		c.CountryCode = "NL"
	}
	if strings.TrimSpace(c.AcceptLanguage) == "" {
		c.AcceptLanguage = "nl"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Client wraps the upstream catalog read endpoints behind a uniform contract.
type Client struct {
	http   httpclient.Client
	cfg    Config
	tokens *tokenSource
}

// New builds a catalog client. A nil httpClient gets a default resty transport
// with the configured per-request timeout.
func New(cfg Config, httpClient httpclient.Client) *Client {
	cfg = cfg.withDefaults()
	if httpClient == nil {
		httpClient = httpclient.NewRestyClient(cfg.Timeout)
	}

	c := &Client{http: httpClient, cfg: cfg}
	if cfg.StaticToken == "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		c.tokens = newTokenSource(httpClient, cfg.AuthURL, cfg.ClientID, cfg.ClientSecret)
	}
	return c
}

// PopularByCategory fetches the popular products for an upstream category id.
func (c *Client) PopularByCategory(ctx context.Context, categoryID string, pageSize int) (ProductPage, error) {
	if strings.TrimSpace(categoryID) == "" {
		return ProductPage{}, &APIError{Kind: KindBadRequest, Message: "category id is empty"}
	}

	query := c.listQuery(pageSize)
	query.Set("category-id", categoryID)

	return c.fetchPage(ctx, c.cfg.BaseURL+"/products/popular", query)
}

// SearchByTerm fetches products matching a free-text search term.
func (c *Client) SearchByTerm(ctx context.Context, term string, pageSize int, includeRelevantCategories bool) (ProductPage, error) {
	if strings.TrimSpace(term) == "" {
		return ProductPage{}, &APIError{Kind: KindBadRequest, Message: "search term is empty"}
	}

	query := c.listQuery(pageSize)
	query.Set("search-term", term)
	if includeRelevantCategories {
		query.Set("include-relevant-categories", "true")
	}

	return c.fetchPage(ctx, c.cfg.BaseURL+"/products/search", query)
}

// ByExternalID looks up a single product by its EAN.
func (c *Client) ByExternalID(ctx context.Context, externalID string) (domain.CatalogProduct, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return domain.CatalogProduct{}, &APIError{Kind: KindBadRequest, Message: "external id is empty"}
	}

	query := url.Values{}
	query.Set("country-code", c.cfg.CountryCode)
	query.Set("include-specifications", "true")
	query.Set("include-image", "true")
	query.Set("include-offer", "true")
	query.Set("include-rating", "true")

	body, err := c.get(ctx, c.cfg.BaseURL+"/products/"+url.PathEscape(externalID), query)
	if err != nil {
		return domain.CatalogProduct{}, err
	}

	var payload productPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.CatalogProduct{}, fmt.Errorf("decode product response: %w", err)
	}
	product, ok := payload.toDomain(c.currency())
	if !ok {
		return domain.CatalogProduct{}, &APIError{Kind: KindNotFound, Message: "product response carried no ean"}
	}
	return product, nil
}

// listQuery builds the shared query parameters for list endpoints.
func (c *Client) listQuery(pageSize int) url.Values {
	query := url.Values{}
	query.Set("country-code", c.cfg.CountryCode)
	query.Set("page-size", strconv.Itoa(clampPageSize(pageSize)))
	query.Set("include-image", "true")
	query.Set("include-offer", "true")
	query.Set("include-rating", "true")
	return query
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, query url.Values) (ProductPage, error) {
	body, err := c.get(ctx, endpoint, query)
	if err != nil {
		return ProductPage{}, err
	}

	var payload productListPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ProductPage{}, fmt.Errorf("decode product list response: %w", err)
	}
	return payload.toPage(c.currency()), nil
}

// get performs one authenticated GET and translates failures into the error taxonomy.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	headers := map[string]string{
		"Accept":          "application/json",
		"Accept-Language": c.cfg.AcceptLanguage,
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	resp, err := c.http.Get(ctx, endpoint, query, headers)
	if err != nil {
		return nil, transportError("catalog request failed", err)
	}
	if resp.StatusCode()/100 != 2 {
		return nil, statusError(resp.StatusCode(), responseSnippet(resp.Body()))
	}
	return resp.Body(), nil
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.cfg.StaticToken != "" {
		return c.cfg.StaticToken, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

// currency is fixed by the configured country; the upstream quotes EUR for NL/BE.
func (c *Client) currency() string {
	return "EUR"
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
