package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	CatalogBaseURL        string        `mapstructure:"catalog_base_url"`
	CatalogAuthURL        string        `mapstructure:"catalog_auth_url"`
	CatalogClientID       string        `mapstructure:"catalog_client_id"`
	CatalogClientSecret   string        `mapstructure:"catalog_client_secret"`
	CatalogToken          string        `mapstructure:"catalog_token"`
	CatalogCountry        string        `mapstructure:"catalog_country"`
	CatalogLanguage       string        `mapstructure:"catalog_language"`
	CatalogTimeoutSeconds int64         `mapstructure:"catalog_timeout_seconds"`
	CatalogTimeout        time.Duration `mapstructure:"-"`

	CategoriesFile string `mapstructure:"categories_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	ImportPageSize    int           `mapstructure:"import_page_size"`
	ImportConcurrency int           `mapstructure:"import_concurrency"`
	ImportPacingMs    int64         `mapstructure:"import_pacing_ms"`
	ImportPacing      time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "catalog-importer")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("catalog_base_url", "https://api.bol.com/marketing/catalog/v1")
	v.SetDefault("catalog_auth_url", "https://login.bol.com/token")
	v.SetDefault("catalog_country", "NL")
	v.SetDefault("catalog_language", "nl")
	v.SetDefault("catalog_timeout_seconds", 12)
	v.SetDefault("categories_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("import_page_size", 10)
	v.SetDefault("import_concurrency", 1)
	v.SetDefault("import_pacing_ms", 500)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/products.db")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CatalogTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid catalog_timeout_seconds (must be positive seconds)")
	}
	cfg.CatalogTimeout = time.Duration(cfg.CatalogTimeoutSeconds) * time.Second

	if cfg.ImportPageSize <= 0 {
		return nil, fmt.Errorf("invalid import_page_size (must be positive)")
	}
	if cfg.ImportConcurrency <= 0 {
		return nil, fmt.Errorf("invalid import_concurrency (must be positive)")
	}
	// Negative pacing disables the inter-chunk delay.
	cfg.ImportPacing = time.Duration(cfg.ImportPacingMs) * time.Millisecond

	return &cfg, nil
}
