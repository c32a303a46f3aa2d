package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultCatalogTTL    = 10 * time.Minute
	defaultSheetsTimeout = 10 * time.Second
	defaultDataDir       = "./data"
	defaultFallbackPath  = "./data/products.json"
	defaultCurrency      = "ARS"
	defaultRefreshLimit  = 6
)

type Config struct {
	Port string
	Env  string

	// Catalog feed.
	SheetsEndpoint string
	SheetsTimeout  time.Duration
	FallbackPath   string
	CatalogTTL     time.Duration
	Currency       string

	// Local durable state (catalog snapshot + carts).
	DataDir string

	// Checkout hand-off. Empty disables the wa.me link (message only).
	SellerPhone string

	MetricsEnabled bool
	MetricsToken   string

	RefreshLimitPerMin int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenv("PORT", defaultPort),
		Env:                getenv("SHOP_ENV", "prod"),
		SheetsEndpoint:     os.Getenv("SHEETS_ENDPOINT"),
		SheetsTimeout:      defaultSheetsTimeout,
		FallbackPath:       getenv("SHEETS_FALLBACK_PATH", defaultFallbackPath),
		CatalogTTL:         defaultCatalogTTL,
		Currency:           getenv("SHOP_CURRENCY", defaultCurrency),
		DataDir:            getenv("DATA_DIR", defaultDataDir),
		SellerPhone:        os.Getenv("WHATSAPP_PHONE"),
		MetricsEnabled:     os.Getenv("METRICS_ENABLED") == "1",
		MetricsToken:       os.Getenv("METRICS_TOKEN"),
		RefreshLimitPerMin: defaultRefreshLimit,
	}

	if raw := os.Getenv("CATALOG_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("CATALOG_TTL: %w", err)
		}
		cfg.CatalogTTL = d
	}

	if raw := os.Getenv("SHEETS_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SHEETS_TIMEOUT: %w", err)
		}
		cfg.SheetsTimeout = d
	}

	if raw := os.Getenv("REFRESH_LIMIT_PER_MIN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("REFRESH_LIMIT_PER_MIN must be a positive integer, got %q", raw)
		}
		cfg.RefreshLimitPerMin = n
	}

	if cfg.CatalogTTL <= 0 {
		return nil, fmt.Errorf("CATALOG_TTL must be positive")
	}
	if cfg.SheetsTimeout <= 0 {
		return nil, fmt.Errorf("SHEETS_TIMEOUT must be positive")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
