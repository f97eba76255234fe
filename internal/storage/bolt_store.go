package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/productpraat/catalog-importer/internal/domain"
)

const productBucket = "products"

// boltStore implements a Store backed by BoltDB, keyed by external id.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(productBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveProducts upserts each product under its external id. Products without
// an external id are skipped; the returned count covers only written entries.
func (b *boltStore) SaveProducts(products []domain.CatalogProduct) (int, error) {
	if b == nil || b.db == nil {
		return 0, fmt.Errorf("store is not open")
	}

	saved := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(productBucket))
		if bucket == nil {
			return fmt.Errorf("product bucket missing")
		}
		for _, product := range products {
			if product.ExternalID == "" {
				continue
			}
			payload, err := json.Marshal(product)
			if err != nil {
				return fmt.Errorf("marshal product %s: %w", product.ExternalID, err)
			}
			if err := bucket.Put([]byte(product.ExternalID), payload); err != nil {
				return fmt.Errorf("put product %s: %w", product.ExternalID, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// Product reads one stored product back by external id.
func (b *boltStore) Product(externalID string) (domain.CatalogProduct, bool, error) {
	var product domain.CatalogProduct
	found := false

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(productBucket))
		if bucket == nil {
			return fmt.Errorf("product bucket missing")
		}
		value := bucket.Get([]byte(externalID))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &product); err != nil {
			return fmt.Errorf("decode product %s: %w", externalID, err)
		}
		found = true
		return nil
	})
	return product, found, err
}

// Count returns the number of stored products.
func (b *boltStore) Count() (int, error) {
	count := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(productBucket))
		if bucket == nil {
			return fmt.Errorf("product bucket missing")
		}
		count = bucket.Stats().KeyN
		return nil
	})
	return count, err
}
