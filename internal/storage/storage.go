package storage

import (
	"fmt"
	"strings"

	"github.com/productpraat/catalog-importer/internal/domain"
)

// Package storage provides the product persistence boundary. The import
// pipeline itself never writes; the caller hands it the deduplicated product
// list after a run.

// Store persists imported products. SaveProducts upserts by external id and
// returns the number of products written, so re-running an import is
// idempotent.
type Store interface {
	Close() error
	SaveProducts(products []domain.CatalogProduct) (int, error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error { return nil }
func (noopStore) SaveProducts(products []domain.CatalogProduct) (int, error) {
	return len(products), nil
}
