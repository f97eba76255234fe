package catalog

import (
	"math"
	"strings"

	"github.com/productpraat/catalog-importer/internal/domain"
)

// Upstream JSON payloads. Field names follow the marketing catalog API wire format.

type productListPayload struct {
	TotalResults int              `json:"totalResults"`
	Results      []productPayload `json:"results"`
}

type productPayload struct {
	EAN    string         `json:"ean"`
	Title  string         `json:"title"`
	Brand  string         `json:"brand"`
	Image  *imagePayload  `json:"image"`
	Offer  *offerPayload  `json:"offer"`
	Rating *ratingPayload `json:"rating"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type offerPayload struct {
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Availability string  `json:"availabilityDescription"`
}

type ratingPayload struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ProductPage is one page of catalog results, already mapped to domain products.
type ProductPage struct {
	Products     []domain.CatalogProduct
	TotalResults int
}

// toDomain maps an upstream product to the domain model. Products with no
// EAN are unusable downstream (the EAN is the dedup key) and yield ok=false.
func (p productPayload) toDomain(currency string) (domain.CatalogProduct, bool) {
	ean := strings.TrimSpace(p.EAN)
	if ean == "" {
		return domain.CatalogProduct{}, false
	}

	out := domain.CatalogProduct{
		ExternalID: ean,
		Title:      strings.TrimSpace(p.Title),
		Brand:      strings.TrimSpace(p.Brand),
	}
	if p.Image != nil {
		out.ImageURL = strings.TrimSpace(p.Image.URL)
	}
	if p.Offer != nil {
		out.PriceMinor = priceToMinor(p.Offer.Price)
		out.Currency = p.Offer.Currency
		if out.Currency == "" {
			out.Currency = currency
		}
		out.OfferAvailability = strings.TrimSpace(p.Offer.Availability)
	}
	if p.Rating != nil {
		out.RatingAverage = p.Rating.Average
		out.RatingCount = p.Rating.Count
	}
	return out, true
}

// priceToMinor converts a decimal price to minor units (cents).
func priceToMinor(price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Round(price * 100))
}

func (pl productListPayload) toPage(currency string) ProductPage {
	page := ProductPage{TotalResults: pl.TotalResults}
	if len(pl.Results) == 0 {
		return page
	}
	page.Products = make([]domain.CatalogProduct, 0, len(pl.Results))
	for _, raw := range pl.Results {
		if product, ok := raw.toDomain(currency); ok {
			page.Products = append(page.Products, product)
		}
	}
	return page
}
