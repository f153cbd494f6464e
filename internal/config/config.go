package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Defaults are tuned for local development.
type Config struct {
	AppName string
	Env     string // development, production
	Port    string
	GinMode string

	// Database
	DBDriver          string // postgres, sqlite
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Sessions
	SessionSecret string
	SessionMaxAge time.Duration
	RememberTTL   time.Duration
	ResetTokenTTL time.Duration
	CookieSecure  bool

	// Cache
	CacheDriver string // memory, redis, none
	CacheTTL    time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting for login/signup (needs redis)
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration

	// SMTP
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	SiteURL      string
	TemplatesDir string
	StaticDir    string

	HTTPLogEnabled     bool
	GzipEnabled        bool
	CORSAllowedOrigins string // comma separated; empty disables CORS
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "recipebox"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		DBDriver:          getenv("DB_DRIVER", "postgres"),
		DatabaseURL:       getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=recipebox port=5432 sslmode=disable"),
		DBMaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getdur("DB_CONN_MAX_LIFETIME", time.Hour),

		SessionSecret: getenv("SESSION_SECRET", "secret_key_change_me"),
		SessionMaxAge: getdur("SESSION_MAX_AGE", 7*24*time.Hour),
		RememberTTL:   getdur("REMEMBER_TTL", 30*24*time.Hour),
		ResetTokenTTL: getdur("RESET_TOKEN_TTL", time.Hour),
		CookieSecure:  getbool("COOKIE_SECURE", false),

		CacheDriver: getenv("CACHE_DRIVER", "memory"),
		CacheTTL:    getdur("CACHE_TTL", 5*time.Minute),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", false),
		RateLimitMax:     getint("RATE_LIMIT_MAX", 10),
		RateLimitWindow:  getdur("RATE_LIMIT_WINDOW", time.Minute),

		SMTPHost: getenv("SMTP_HOST", ""),
		SMTPPort: getint("SMTP_PORT", 587),
		SMTPUser: getenv("SMTP_USER", ""),
		SMTPPass: getenv("SMTP_PASS", ""),
		SMTPFrom: getenv("SMTP_FROM", ""),

		SiteURL:      getenv("SITE_URL", "http://localhost:8080"),
		TemplatesDir: getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    getenv("STATIC_DIR", "./web/static"),

		HTTPLogEnabled:     getbool("HTTP_LOG_ENABLED", true),
		GzipEnabled:        getbool("GZIP_ENABLED", true),
		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),
	}
}

// IsProduction reports whether detailed error messages must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesRedis reports whether a redis client is needed at startup.
func (c *Config) UsesRedis() bool {
	return c.CacheDriver == "redis" || c.RateLimitEnabled
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
