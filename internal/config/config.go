package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultIndexURL is the curated catalog index published by codefrydev.
	DefaultIndexURL = "https://raw.githubusercontent.com/codefrydev/Data/refs/heads/main/Prompt/allsources.json"
	// DefaultBaseURL is prepended to relative category file paths.
	DefaultBaseURL = "https://raw.githubusercontent.com/codefrydev/Data/refs/heads/main/Prompt/"
	// DefaultStateKey is the single store key holding the serialized AppState.
	DefaultStateKey = "promptvault-state"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Remote catalog
	IndexURL          string        // URL of the catalog index document
	BaseURL           string        // prefix for relative category file paths
	FetchTimeout      time.Duration // timeout of a single remote GET
	FetchConcurrency  int           // max category files fetched in parallel
	RefreshTimeout    time.Duration // budget for a manual refresh started in the background
	RefreshInterval   int           // default background refresh interval (minutes) for a fresh state
	BreakerMaxFails   int           // consecutive remote failures before the breaker opens
	BreakerOpenPeriod time.Duration // how long the breaker stays open before probing again

	// Local store
	StateKey string // Redis key of the serialized AppState

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict infra endpoints to specific IPs/CIDRs
	AllowedOrigins []string // CORS origins allowed to call the API
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitBurst int      // per-IP burst on mutating endpoints
	RateLimitRPM   int      // per-IP sustained requests per minute on mutating endpoints
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PROMPTVAULT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PROMPTVAULT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("PROMPTVAULT_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("PROMPTVAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PROMPTVAULT_PRETTY_LOG", true),

		// Remote catalog
		IndexURL:          getenv("PROMPTVAULT_INDEX_URL", DefaultIndexURL),
		BaseURL:           ensureTrailingSlash(getenv("PROMPTVAULT_BASE_URL", DefaultBaseURL)),
		FetchTimeout:      mustDuration("PROMPTVAULT_FETCH_TIMEOUT", 15*time.Second),
		FetchConcurrency:  getenvInt("PROMPTVAULT_FETCH_CONCURRENCY", 4),
		RefreshTimeout:    mustDuration("PROMPTVAULT_REFRESH_TIMEOUT", 2*time.Minute),
		RefreshInterval:   getenvInt("PROMPTVAULT_REFRESH_INTERVAL_MINUTES", 60),
		BreakerMaxFails:   getenvInt("PROMPTVAULT_BREAKER_MAX_FAILURES", 5),
		BreakerOpenPeriod: mustDuration("PROMPTVAULT_BREAKER_OPEN_PERIOD", time.Minute),

		// Local store
		StateKey: getenv("PROMPTVAULT_STATE_KEY", DefaultStateKey),

		// Redis settings
		RedisAddr:             requireEnv("PROMPTVAULT_REDIS_ADDR"),
		RedisUser:             getenv("PROMPTVAULT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("PROMPTVAULT_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("PROMPTVAULT_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("PROMPTVAULT_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("PROMPTVAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("PROMPTVAULT_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("PROMPTVAULT_ALLOWED_ORIGINS", "*")),
		TrustProxy:     mustBool("PROMPTVAULT_TRUST_PROXY", true),
		RateLimitBurst: getenvInt("PROMPTVAULT_RATE_LIMIT_BURST", 20),
		RateLimitRPM:   getenvInt("PROMPTVAULT_RATE_LIMIT_RPM", 120),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: PROMPTVAULT_REDIS_PASSWORD is required when PROMPTVAULT_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.RefreshInterval < 1 {
		cfg.RefreshInterval = 1
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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

// ensureTrailingSlash makes relative category paths join cleanly onto the base URL.
func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
