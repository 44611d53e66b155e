package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	AppEnv             string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string
	SessionTTL         time.Duration

	// Redirect behaviour
	BreakoutPolicy string // "all" or "in-app"
	RecordBots     bool
	RecordMode     string // "async" or "sync"
	RecordTimeout  time.Duration

	// Geo lookup, disabled when GeoAPIURL is empty
	GeoAPIURL  string
	GeoTimeout time.Duration

	// Link cache: "none", "memory" or "redis"
	CacheDriver string
	RedisURL    string
	CacheTTL    time.Duration

	LogFile   string
	SentryDSN string
	Timezone  string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8080/dashboard"),
		AllowedEmails:      getEnvList("ALLOWED_EMAILS"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		BreakoutPolicy: getEnv("BREAKOUT_POLICY", "all"),
		RecordBots:     getEnvBool("RECORD_BOTS", true),
		RecordMode:     getEnv("RECORD_MODE", "async"),
		RecordTimeout:  getEnvDuration("RECORD_TIMEOUT", 10*time.Second),

		GeoAPIURL:  getEnv("GEO_API_URL", ""),
		GeoTimeout: getEnvDuration("GEO_TIMEOUT", 2*time.Second),

		CacheDriver: getEnv("CACHE_DRIVER", "none"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:    getEnvDuration("CACHE_TTL", 10*time.Minute),

		LogFile:   getEnv("LOG_FILE", ""),
		SentryDSN: getEnv("SENTRY_DSN", ""),
		Timezone:  getEnv("TIMEZONE", "UTC"),
	}
}

// IsProduction reports whether cookies should be marked secure
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves Timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		log.Printf("Invalid %s, using %t", key, fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
