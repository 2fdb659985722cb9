package config

import (
	"os"
	"strconv"
	"time"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the service configuration loaded from the environment
type Config struct {
	HTTPPort string

	// Storage
	MongoURI      string // empty disables Mongo-backed features
	MongoDatabase string
	RedisAddr     string
	CacheBackend  string
	CacheTTL      time.Duration

	// Resolution
	TierTimeout         time.Duration
	MinSynthesisRating  float64
	Currency            string
	CatalogFile         string // optional override of the embedded catalogue
	CoalesceResolutions bool

	// Place-data provider
	PlacesBaseURL string
	PlacesAPIKey  string

	CORSAllowedOrigins string
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		HTTPPort:            getEnv("PORT", "8080"),
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "menudb"),
		RedisAddr:           trimRedisScheme(getEnv("REDIS_URI", "localhost:6379")),
		CacheBackend:        getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheTTL:            getEnvDuration("MENU_CACHE_TTL", 30*time.Minute),
		TierTimeout:         getEnvDuration("TIER_TIMEOUT", 8*time.Second),
		MinSynthesisRating:  getEnvFloat("MIN_SYNTHESIS_RATING", 2.0),
		Currency:            getEnv("MENU_CURRENCY", "USD"),
		CatalogFile:         getEnv("MENU_CATALOG_FILE", ""),
		CoalesceResolutions: getEnvBool("COALESCE_RESOLUTIONS", false),
		PlacesBaseURL:       getEnv("PLACES_BASE_URL", ""),
		PlacesAPIKey:        getEnv("PLACES_API_KEY", ""),
		CORSAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// UseRedis reports whether the Redis cache backend is selected
func (c *Config) UseRedis() bool {
	return c.CacheBackend == CacheBackendRedis
}

// MongoEnabled reports whether a Mongo connection string is configured
func (c *Config) MongoEnabled() bool {
	return c.MongoURI != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// Remove redis:// prefix if present
func trimRedisScheme(addr string) string {
	if len(addr) > 8 && addr[:8] == "redis://" {
		return addr[8:]
	}
	return addr
}
