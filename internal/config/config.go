package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for the local catalog cache.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per HTTP request, covers remote calls

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Local cache
	StoreBackend string // "sqlite" (default) | "redis"
	SQLitePath   string // ex: "/data/navgrid.db"

	// Seed (read-only default catalog)
	SeedFile          string // catalog JSON/YAML, optional
	HomepageBookmarks string // Homepage bookmarks.yaml, optional
	HomepageServices  string // Homepage services.yaml, optional

	// Remote store
	RemoteURL           string        // empty => remote disabled
	RemoteAPIKey        string        // bearer token, required when RemoteURL is set
	RemoteTimeout       time.Duration // per remote call
	RemoteRetryInterval time.Duration // retry of the startup adoption, 0 = no retry

	// Redis (only for StoreBackend=redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	SyncRateBurst  int // sync endpoints: burst per client IP
	SyncRatePerMin int // sync endpoints: sustained requests per minute per client IP
}

// Load reads the configuration from NAV_* environment variables.
// It panics when a required variable is missing.
func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NAV_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("NAV_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("NAV_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("NAV_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NAV_PRETTY_LOG", true),

		// Local cache
		StoreBackend: strings.ToLower(getenv("NAV_STORE_BACKEND", BackendSQLite)),
		SQLitePath:   getenv("NAV_SQLITE_PATH", "navgrid.db"),

		// Seed
		SeedFile:          getenv("NAV_SEED_FILE", ""),
		HomepageBookmarks: getenv("NAV_HOMEPAGE_BOOKMARKS", ""),
		HomepageServices:  getenv("NAV_HOMEPAGE_SERVICES", ""),

		// Remote
		RemoteURL:           getenv("NAV_REMOTE_URL", ""),
		RemoteAPIKey:        getenv("NAV_REMOTE_API_KEY", ""),
		RemoteTimeout:       mustDuration("NAV_REMOTE_TIMEOUT", 10*time.Second),
		RemoteRetryInterval: mustDuration("NAV_REMOTE_RETRY_INTERVAL", time.Minute),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("NAV_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("NAV_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("NAV_TRUST_PROXY", false),

		SyncRateBurst:  getenvInt("NAV_SYNC_RATE_BURST", 5),
		SyncRatePerMin: getenvInt("NAV_SYNC_RATE_PER_MIN", 10),
	}

	switch cfg.StoreBackend {
	case BackendSQLite:
	case BackendRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: NAV_STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, cfg.StoreBackend))
	}

	if cfg.RemoteURL != "" && cfg.RemoteAPIKey == "" {
		panic("❌ FATAL: NAV_REMOTE_API_KEY is required when NAV_REMOTE_URL is set")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("NAV_REDIS_ADDR")
	cfg.RedisUser = getenv("NAV_REDIS_USERNAME", "")
	cfg.RedisPassword = getenv("NAV_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("NAV_REDIS_DB")
	cfg.RedisDT = mustDuration("NAV_REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("NAV_REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("NAV_REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("NAV_REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("NAV_REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("NAV_REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("NAV_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("NAV_REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("NAV_REDIS_WARN_THRESHOLD", 3)
}

// RemoteEnabled reports whether a remote store is configured.
func (c *Config) RemoteEnabled() bool { return c.RemoteURL != "" }

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.RemoteAPIKey != "" {
		cp.RemoteAPIKey = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
