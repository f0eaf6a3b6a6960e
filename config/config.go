package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Fetch     FetchConfig
	Browser   BrowserConfig
	Script    ScriptConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds how long in-flight requests may drain.
	ShutdownTimeout time.Duration // default: 5s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key (or client IP).
	RequestsPerSecond float64 // default: 20

	// Burst is the maximum burst size per API key.
	Burst int // default: 40
}

// CacheConfig controls the fetched page cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached pages.
	MaxEntries int // default: 100

	// TTL is how long a fetched page is served from cache.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// FetchConfig controls page fetching and its retry policy.
type FetchConfig struct {
	// Timeout is the per-attempt deadline for the HTTP engine.
	Timeout time.Duration // default: 15s

	// UserAgent overrides the engine's browser-like User-Agent.
	UserAgent string

	// Retries is the number of extra attempts after a temporary failure.
	Retries int // default: 2

	// RetryDelay is the first backoff delay; it doubles up to RetryMaxDelay.
	RetryDelay    time.Duration // default: 500ms
	RetryMaxDelay time.Duration // default: 5s

	// EscalationDelays is the staged start delay for each engine tier
	// (http, rod, rod-stealth) when the browser is enabled.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]
}

// BrowserConfig controls the optional Rod browser engine.
type BrowserConfig struct {
	// Enabled launches a headless browser as an escalation engine.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// Proxy is passed to the browser launcher.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavigationTimeout bounds a single page render.
	NavigationTimeout time.Duration // default: 30s
}

// ScriptConfig controls screenplay extraction defaults.
type ScriptConfig struct {
	// URL is the screenplay page used when a request names none.
	URL string

	// ScenePattern and RolePattern override the default regexes.
	ScenePattern string
	RolePattern  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("KOANS_HOST", "0.0.0.0"),
			Port:            envIntOr("KOANS_PORT", 8080),
			Mode:            envOr("KOANS_MODE", "release"),
			ShutdownTimeout: envDurationOr("KOANS_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("KOANS_AUTH_ENABLED", false),
			APIKeys: envSliceOr("KOANS_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("KOANS_RATE_RPS", 20),
			Burst:             envIntOr("KOANS_RATE_BURST", 40),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("KOANS_CACHE_MAX_ENTRIES", 100),
			TTL:        envDurationOr("KOANS_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("KOANS_LOG_LEVEL", "info"),
			Format: envOr("KOANS_LOG_FORMAT", "json"),
		},
		Fetch: FetchConfig{
			Timeout:          envDurationOr("KOANS_FETCH_TIMEOUT", 15*time.Second),
			UserAgent:        os.Getenv("KOANS_USER_AGENT"),
			Retries:          envIntOr("KOANS_FETCH_RETRIES", 2),
			RetryDelay:       envDurationOr("KOANS_FETCH_RETRY_DELAY", 500*time.Millisecond),
			RetryMaxDelay:    envDurationOr("KOANS_FETCH_RETRY_MAX_DELAY", 5*time.Second),
			EscalationDelays: envDurationSliceOr("KOANS_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
		},
		Browser: BrowserConfig{
			Enabled:           envBoolOr("KOANS_BROWSER_ENABLED", false),
			Headless:          envBoolOr("KOANS_HEADLESS", true),
			MaxPages:          envIntOr("KOANS_MAX_PAGES", 4),
			Proxy:             os.Getenv("KOANS_PROXY"),
			NoSandbox:         envBoolOr("KOANS_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("KOANS_BROWSER_BIN"),
			NavigationTimeout: envDurationOr("KOANS_NAV_TIMEOUT", 30*time.Second),
		},
		Script: ScriptConfig{
			URL:          envOr("KOANS_SCRIPT_URL", "http://www.imsdb.com/scripts/Star-Wars-A-New-Hope.html"),
			ScenePattern: os.Getenv("KOANS_SCENE_PATTERN"),
			RolePattern:  os.Getenv("KOANS_ROLE_PATTERN"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		var result []time.Duration
		for _, p := range envSliceOr(key, nil) {
			if d, err := time.ParseDuration(p); err == nil {
				result = append(result, d)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
