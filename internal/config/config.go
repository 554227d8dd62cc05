package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mock_cart/internal/catalog"
	"github.com/Skotchmaster/mock_cart/internal/pricing"
	pkgconfig "github.com/Skotchmaster/mock_cart/pkg/config"
)

type Config struct {
	ServiceName string
	Port        string
	DatabaseURL string
	LogLevel    string

	TaxRate        decimal.Decimal
	PersistTimeout time.Duration

	CatalogSourceURL string
	CatalogSeedLimit int

	RedisAddr     string
	RedisPassword string
	CatalogTTL    time.Duration

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	KafkaBrokers []string
}

// Load reads the process environment. DATABASE_URL is required and an
// unparsable TAX_RATE is an error rather than a silent default.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:      pkgconfig.EnvDefault("SERVICE_NAME", "mock-cart"),
		Port:             pkgconfig.EnvDefault("SERVER_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		PersistTimeout:   pkgconfig.EnvDurationDefault("PERSIST_TIMEOUT", 5*time.Second),
		CatalogSourceURL: pkgconfig.EnvDefault("CATALOG_SOURCE_URL", catalog.DefaultSourceURL),
		CatalogSeedLimit: pkgconfig.EnvIntDefault("CATALOG_SEED_LIMIT", 20),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CatalogTTL:       pkgconfig.EnvDurationDefault("CATALOG_CACHE_TTL", 15*time.Minute),
		ESURL:            os.Getenv("ES_URL"),
		ESUser:           os.Getenv("ES_USER"),
		ESPassword:       os.Getenv("ES_PASSWORD"),
		ESIndex:          pkgconfig.EnvDefault("ES_INDEX", "products"),
		KafkaBrokers:     pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required env DATABASE_URL")
	}

	cfg.TaxRate = pricing.DefaultTaxRate
	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := pricing.ParseRate(v)
		if err != nil {
			return nil, fmt.Errorf("TAX_RATE: %w", err)
		}
		cfg.TaxRate = rate
	}
	if cfg.CatalogSeedLimit <= 0 {
		cfg.CatalogSeedLimit = 20
	}
	return cfg, nil
}
