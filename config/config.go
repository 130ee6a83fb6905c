package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/freegameworker/pkg/errors"
	"sjsage522/freegameworker/services/cache"
)

// KnownStores lists the storefront adapter names in their default poll order
var KnownStores = []string{"epicgames", "steam", "gog"}

// Config represents the application configuration
type Config struct {
	// Catalog service
	CatalogURL       string
	CatalogToken     string
	CatalogRetries   int
	CatalogWaitDelay time.Duration

	// Poll loop
	PollInterval time.Duration
	SubmitDelay  time.Duration
	HTTPTimeout  time.Duration
	Stores       []string

	// Storefronts; empty URLs select each store's public endpoint
	SteamURL         string
	EpicURL          string
	GogURL           string
	SteamDetailDelay time.Duration
	GogItemDelay     time.Duration
	RateLimitBlock   time.Duration

	// Memcache configuration; empty address disables caching
	MemcacheAddr   string
	ExistsCacheTTL time.Duration

	// Redis configuration; empty address disables announcements
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int64

	// Metrics listener; empty disables the endpoint
	MetricsAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		CatalogURL:           getEnv("CATALOG_API_URL", ""),
		CatalogToken:         getEnv("CATALOG_API_TOKEN", ""),
		CatalogRetries:       getEnvInt("CATALOG_WAIT_RETRIES", 10),
		CatalogWaitDelay:     getEnvDuration("CATALOG_WAIT_DELAY_SECONDS", 5, time.Second),
		PollInterval:         getEnvDuration("POLL_INTERVAL_SECONDS", 600, time.Second),
		SubmitDelay:          getEnvDuration("SUBMIT_DELAY_MILLIS", 1000, time.Millisecond),
		HTTPTimeout:          getEnvDuration("HTTP_TIMEOUT_SECONDS", 30, time.Second),
		Stores:               splitList(getEnv("STORES", strings.Join(KnownStores, ","))),
		SteamURL:             getEnv("STEAM_URL", ""),
		EpicURL:              getEnv("EPIC_URL", ""),
		GogURL:               getEnv("GOG_URL", ""),
		SteamDetailDelay:     getEnvDuration("STEAM_DETAIL_DELAY_MILLIS", 2000, time.Millisecond),
		GogItemDelay:         getEnvDuration("GOG_ITEM_DELAY_MILLIS", 1000, time.Millisecond),
		RateLimitBlock:       getEnvDuration("RATE_LIMIT_BLOCK_SECONDS", 500, time.Second),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		ExistsCacheTTL:       getEnvDuration("EXISTS_CACHE_TTL_SECONDS", 3600, time.Second),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "freegames"),
		RedisStreamMaxLength: int64(getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000)),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		Environment:          getEnv("FREEGAME_ENVIRONMENT", "development"),
	}
}

// Validate reports the first configuration problem found
func (c *Config) Validate() error {
	if c.CatalogURL == "" {
		return apperrors.NewConfiguration("CATALOG_API_URL is required", nil)
	}
	if c.PollInterval <= 0 {
		return apperrors.NewConfiguration("POLL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.CatalogRetries < 1 {
		return apperrors.NewConfiguration("CATALOG_WAIT_RETRIES must be at least 1", nil)
	}
	if c.RateLimitBlock >= cache.MaxExpiration {
		return apperrors.NewConfiguration("RATE_LIMIT_BLOCK_SECONDS must be under 30 days", nil)
	}
	if c.ExistsCacheTTL >= cache.MaxExpiration {
		return apperrors.NewConfiguration("EXISTS_CACHE_TTL_SECONDS must be under 30 days", nil)
	}
	if len(c.Stores) == 0 {
		return apperrors.NewConfiguration("STORES must name at least one store", nil)
	}
	for _, name := range c.Stores {
		if !isKnownStore(name) {
			return apperrors.NewConfiguration(fmt.Sprintf("unknown store %q in STORES", name), nil)
		}
	}
	return nil
}

// IsProduction reports whether the worker runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func isKnownStore(name string) bool {
	for _, known := range KnownStores {
		if name == known {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * unit
}
