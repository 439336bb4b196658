package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOOKMARKSORT_SERVER_PORT.
const EnvPrefix = "BOOKMARKSORT"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Fetch      FetchConfig
	Browser    BrowserConfig
	Storage    StorageConfig
	Cache      CacheConfig
	Categories CategoriesConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Webhook    WebhookConfig
	Log        LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls how the crawler fetches bookmark pages.
type FetchConfig struct {
	// Timeout bounds one page fetch.
	Timeout time.Duration // default: 3s

	UserAgent string // default: "Mozilla/5.0"

	// Engine selects "http", "browser" or "auto" (http, then browser).
	Engine string // default: "http"

	MaxBodyBytes int64 // default: 10 MiB

	// RatePerHost caps requests per second to a single host; 0 disables.
	RatePerHost float64 // default: 0
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	Headless  bool // default: true
	NoSandbox bool // default: false
	Bin       string
	Proxy     string
	MaxPages  int  // default: 4
	Stealth   bool // default: true

	// BlockedResources lists resource types never loaded.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResources []string
}

// StorageConfig controls where uploads live.
type StorageConfig struct {
	UploadDir      string // default: "uploads"
	MaxUploadBytes int64  // default: 32 MiB
}

// CacheConfig controls the parse result cache.
type CacheConfig struct {
	MaxEntries int           // default: 256
	TTL        time.Duration // default: 1h
}

// CategoriesConfig points at an optional YAML table merged over the
// built-in categories.
type CategoriesConfig struct {
	File string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// WebhookConfig controls completion callbacks.
type WebhookConfig struct {
	Timeout time.Duration // default: 10s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("fetch.timeout", 3*time.Second)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0")
	v.SetDefault("fetch.engine", "http")
	v.SetDefault("fetch.max_body_bytes", 10<<20)
	v.SetDefault("fetch.rate_per_host", 0.0)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.max_pages", 4)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.blocked_resources", []string{"Image", "Stylesheet", "Font", "Media"})

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.max_upload_bytes", 32<<20)

	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("categories.file", "")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("webhook.timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from, in increasing precedence: built-in
// defaults, a config file, a .env file, and the environment.
//
// path names a config file explicitly; when empty, bookmarksort.yaml is
// looked up in the working directory and its absence is not an error.
func Load(path string) (*Config, error) {
	// Real environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bookmarksort")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
			Mode: v.GetString("server.mode"),
		},
		Fetch: FetchConfig{
			Timeout:      v.GetDuration("fetch.timeout"),
			UserAgent:    v.GetString("fetch.user_agent"),
			Engine:       strings.ToLower(v.GetString("fetch.engine")),
			MaxBodyBytes: v.GetInt64("fetch.max_body_bytes"),
			RatePerHost:  v.GetFloat64("fetch.rate_per_host"),
		},
		Browser: BrowserConfig{
			Headless:         v.GetBool("browser.headless"),
			NoSandbox:        v.GetBool("browser.no_sandbox"),
			Bin:              v.GetString("browser.bin"),
			Proxy:            v.GetString("browser.proxy"),
			MaxPages:         v.GetInt("browser.max_pages"),
			Stealth:          v.GetBool("browser.stealth"),
			BlockedResources: stringList(v, "browser.blocked_resources"),
		},
		Storage: StorageConfig{
			UploadDir:      v.GetString("storage.upload_dir"),
			MaxUploadBytes: v.GetInt64("storage.max_upload_bytes"),
		},
		Cache: CacheConfig{
			MaxEntries: v.GetInt("cache.max_entries"),
			TTL:        v.GetDuration("cache.ttl"),
		},
		Categories: CategoriesConfig{
			File: v.GetString("categories.file"),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
			APIKeys: stringList(v, "auth.api_keys"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("rate_limit.rps"),
			Burst:             v.GetInt("rate_limit.burst"),
		},
		Webhook: WebhookConfig{
			Timeout: v.GetDuration("webhook.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

// stringList reads a list that may come from YAML as a sequence or from the
// environment as a comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return v.GetStringSlice(key)
}
