package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName  string
	Env      string // development, staging, production
	Port     string
	GinMode  string
	LogLevel string

	// Remote course platform API
	APIBaseURL     string
	APITimeout     time.Duration
	SocketURL      string
	SocketRetry    time.Duration
	TokenStorePath string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Gateway JWT
	JWTAccessSecret string
	AccessTTL       time.Duration
	SessionTTL      time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// RabbitMQ (optional notification fan-out)
	RabbitMQURL                string
	RabbitMQNotificationsQueue string

	// Elasticsearch (optional entity search)
	ElasticsearchAddrs string // comma-separated; empty disables search indexing
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESIndexPrefix      string

	// Analytics cache
	AnalyticsCacheTTL time.Duration

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
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
		AppName:  getenv("APP_NAME", "course-admin"),
		Env:      getenv("APP_ENV", "development"),
		Port:     getenv("PORT", "8080"),
		GinMode:  getenv("GIN_MODE", "release"),
		LogLevel: getenv("LOG_LEVEL", ""),

		APIBaseURL:     strings.TrimRight(getenv("API_BASE_URL", "http://localhost:3000/api/v1"), "/"),
		APITimeout:     getdur("API_TIMEOUT", 30*time.Second),
		SocketURL:      getenv("SOCKET_URL", ""),
		SocketRetry:    getdur("SOCKET_RETRY", 5*time.Second),
		TokenStorePath: getenv("TOKEN_STORE_PATH", ".course-admin/token"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTAccessSecret: getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		AccessTTL:       getdur("JWT_ACCESS_TTL", 12*time.Hour),
		SessionTTL:      getdur("SESSION_TTL", 24*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		RabbitMQURL:                getenv("RABBITMQ_URL", ""),
		RabbitMQNotificationsQueue: getenv("RABBITMQ_NOTIFICATIONS_QUEUE", "admin.notifications"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESIndexPrefix:      getenv("ES_INDEX_PREFIX", "course-admin"),

		AnalyticsCacheTTL: getdur("ANALYTICS_CACHE_TTL", 5*time.Minute),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
