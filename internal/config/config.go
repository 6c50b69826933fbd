// Package config manages shelf's global settings stored at
// ~/.config/shelf/config.json. Every setting can be overridden by an
// environment variable; getters resolve env > config.json > default.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	configFile = "config.json"
	lockName   = "config.json.lock"
)

// Defaults
const (
	DefaultServerURL    = "http://localhost:8000"
	DefaultTimeout      = 10 * time.Second
	DefaultDebounce     = 250 * time.Millisecond
	DefaultCount        = 100
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	defaultDirName      = "shelf"
	defaultHistoryState = true
)

// ServerConfig holds remote catalog settings.
type ServerConfig struct {
	URL     string `json:"url,omitempty"`
	Timeout string `json:"timeout,omitempty"` // duration string, default "10s"
}

// CatalogConfig holds browsing settings.
type CatalogConfig struct {
	Debounce     string `json:"debounce,omitempty"`      // duration string, default "250ms"
	DefaultCount *int   `json:"default_count,omitempty"` // nil = default 100
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// HistoryConfig holds activity log settings.
type HistoryConfig struct {
	Enabled *bool `json:"enabled,omitempty"` // nil = default true
}

// WebhookConfig holds the activity webhook settings.
type WebhookConfig struct {
	URL    string `json:"url,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// Config is the global shelf config.
type Config struct {
	Server       ServerConfig    `json:"server"`
	Catalog      CatalogConfig   `json:"catalog"`
	Log          LogConfig       `json:"log"`
	History      HistoryConfig   `json:"history"`
	Webhook      WebhookConfig   `json:"webhook"`
	FeatureFlags map[string]bool `json:"features,omitempty"`
}

// Dir returns ~/.config/shelf, creating it if necessary.
// SHELF_CONFIG_DIR overrides the location.
func Dir() (string, error) {
	dir := os.Getenv("SHELF_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", defaultDirName)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Path returns the location of config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are given) into the environment. Variables already set win. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	slog.Debug("config: loaded env files", "files", existing)
	return nil
}

// Load reads the global config. A missing file yields an empty config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config using atomic write (temp file + rename)
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, configFile))
}

// Update loads, modifies and saves the config while holding the config lock.
func Update(fn func(*Config) error) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return withConfigLock(dir, func() error {
		cfg, err := Load()
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		return Save(cfg)
	})
}

// withConfigLock serializes writers of config.json across processes
func withConfigLock(dir string, fn func() error) error {
	f, err := os.OpenFile(filepath.Join(dir, lockName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer unlockFile(f)

	return fn()
}

// --- Getters (env > config.json > default) ---

// GetServerURL returns the catalog server URL.
// Priority: SHELF_SERVER_URL env > config.json server.url > default.
func GetServerURL() string {
	if v := os.Getenv("SHELF_SERVER_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	cfg, err := Load()
	if err == nil && cfg.Server.URL != "" {
		return strings.TrimRight(cfg.Server.URL, "/")
	}
	return DefaultServerURL
}

// GetTimeout returns the HTTP request timeout.
// Priority: SHELF_TIMEOUT env > config.json server.timeout > 10s
func GetTimeout() time.Duration {
	return durationSetting("SHELF_TIMEOUT", func(c *Config) string { return c.Server.Timeout }, DefaultTimeout)
}

// GetDebounce returns the quiet period before a filter change is fetched.
// Priority: SHELF_DEBOUNCE env > config.json catalog.debounce > 250ms
func GetDebounce() time.Duration {
	return durationSetting("SHELF_DEBOUNCE", func(c *Config) string { return c.Catalog.Debounce }, DefaultDebounce)
}

// GetDefaultCount returns the result cap sent when the user chose none.
// Priority: SHELF_DEFAULT_COUNT env > config.json catalog.default_count > 100
func GetDefaultCount() int {
	if v := os.Getenv("SHELF_DEFAULT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	cfg, err := Load()
	if err == nil && cfg.Catalog.DefaultCount != nil && *cfg.Catalog.DefaultCount > 0 {
		return *cfg.Catalog.DefaultCount
	}
	return DefaultCount
}

// GetLogLevel returns the diagnostic log level.
// Priority: SHELF_LOG_LEVEL env > config.json log.level > warn
func GetLogLevel() string {
	if v := strings.ToLower(os.Getenv("SHELF_LOG_LEVEL")); validLevel(v) {
		return v
	}
	cfg, err := Load()
	if err == nil && validLevel(strings.ToLower(cfg.Log.Level)) {
		return strings.ToLower(cfg.Log.Level)
	}
	return DefaultLogLevel
}

// GetLogFormat returns "text" or "json".
// Priority: SHELF_LOG_FORMAT env > config.json log.format > text
func GetLogFormat() string {
	if v := strings.ToLower(os.Getenv("SHELF_LOG_FORMAT")); validFormat(v) {
		return v
	}
	cfg, err := Load()
	if err == nil && validFormat(strings.ToLower(cfg.Log.Format)) {
		return strings.ToLower(cfg.Log.Format)
	}
	return DefaultLogFormat
}

// GetHistoryEnabled returns whether notifications are recorded.
// Priority: SHELF_HISTORY env > config.json history.enabled > true
func GetHistoryEnabled() bool {
	if v := parseBoolEnv("SHELF_HISTORY"); v != nil {
		return *v
	}
	cfg, err := Load()
	if err == nil && cfg.History.Enabled != nil {
		return *cfg.History.Enabled
	}
	return defaultHistoryState
}

// GetWebhookURL returns the URL activity is posted to ("" disables it).
// Priority: SHELF_WEBHOOK_URL env > config.json webhook.url.
func GetWebhookURL() string {
	if v := os.Getenv("SHELF_WEBHOOK_URL"); v != "" {
		return v
	}
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.Webhook.URL
}

// GetWebhookSecret returns the HMAC secret for webhook signatures.
// Priority: SHELF_WEBHOOK_SECRET env > config.json webhook.secret.
func GetWebhookSecret() string {
	if v := os.Getenv("SHELF_WEBHOOK_SECRET"); v != "" {
		return v
	}
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.Webhook.Secret
}

// SetFeature stores a feature flag override. nil removes it.
func SetFeature(name string, enabled *bool) error {
	return Update(func(cfg *Config) error {
		if enabled == nil {
			delete(cfg.FeatureFlags, name)
			return nil
		}
		if cfg.FeatureFlags == nil {
			cfg.FeatureFlags = make(map[string]bool)
		}
		cfg.FeatureFlags[name] = *enabled
		return nil
	})
}

func durationSetting(envKey string, fromFile func(*Config) string, def time.Duration) time.Duration {
	if v := os.Getenv(envKey); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	cfg, err := Load()
	if err == nil {
		if s := fromFile(cfg); s != "" {
			if d, err := time.ParseDuration(s); err == nil && d > 0 {
				return d
			}
		}
	}
	return def
}

// parseBoolEnv returns nil if env not set, pointer to bool if set.
func parseBoolEnv(envKey string) *bool {
	b, ok := parseBool(os.Getenv(envKey))
	if !ok {
		return nil
	}
	return &b
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func validLevel(v string) bool {
	switch v {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func validFormat(v string) bool {
	return v == "text" || v == "json"
}

// --- Key access for `shelf config` ---

// Key describes one dotted config key.
type Key struct {
	Name    string
	Env     string
	Default string
	Help    string
	get     func(*Config) string
	set     func(*Config, string) error
	resolve func() string
}

var keys = []Key{
	{
		Name: "server.url", Env: "SHELF_SERVER_URL", Default: DefaultServerURL,
		Help:    "Base URL of the catalog API",
		get:     func(c *Config) string { return c.Server.URL },
		set:     setURL,
		resolve: GetServerURL,
	},
	{
		Name: "server.timeout", Env: "SHELF_TIMEOUT", Default: DefaultTimeout.String(),
		Help:    "HTTP request timeout",
		get:     func(c *Config) string { return c.Server.Timeout },
		set:     setDuration(func(c *Config, v string) { c.Server.Timeout = v }),
		resolve: func() string { return GetTimeout().String() },
	},
	{
		Name: "catalog.debounce", Env: "SHELF_DEBOUNCE", Default: DefaultDebounce.String(),
		Help:    "Quiet period before filter changes are fetched",
		get:     func(c *Config) string { return c.Catalog.Debounce },
		set:     setDuration(func(c *Config, v string) { c.Catalog.Debounce = v }),
		resolve: func() string { return GetDebounce().String() },
	},
	{
		Name: "catalog.default_count", Env: "SHELF_DEFAULT_COUNT", Default: strconv.Itoa(DefaultCount),
		Help: "Result cap used when none is selected",
		get: func(c *Config) string {
			if c.Catalog.DefaultCount == nil {
				return ""
			}
			return strconv.Itoa(*c.Catalog.DefaultCount)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Catalog.DefaultCount = nil
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("catalog.default_count must be a positive integer, got %q", v)
			}
			c.Catalog.DefaultCount = &n
			return nil
		},
		resolve: func() string { return strconv.Itoa(GetDefaultCount()) },
	},
	{
		Name: "log.level", Env: "SHELF_LOG_LEVEL", Default: DefaultLogLevel,
		Help: "Diagnostic log level (debug, info, warn, error)",
		get:  func(c *Config) string { return c.Log.Level },
		set: func(c *Config, v string) error {
			v = strings.ToLower(v)
			if v != "" && !validLevel(v) {
				return fmt.Errorf("log.level must be debug, info, warn or error, got %q", v)
			}
			c.Log.Level = v
			return nil
		},
		resolve: GetLogLevel,
	},
	{
		Name: "log.format", Env: "SHELF_LOG_FORMAT", Default: DefaultLogFormat,
		Help: "Diagnostic log format (text, json)",
		get:  func(c *Config) string { return c.Log.Format },
		set: func(c *Config, v string) error {
			v = strings.ToLower(v)
			if v != "" && !validFormat(v) {
				return fmt.Errorf("log.format must be text or json, got %q", v)
			}
			c.Log.Format = v
			return nil
		},
		resolve: GetLogFormat,
	},
	{
		Name: "history.enabled", Env: "SHELF_HISTORY", Default: strconv.FormatBool(defaultHistoryState),
		Help: "Record notifications in the activity log",
		get: func(c *Config) string {
			if c.History.Enabled == nil {
				return ""
			}
			return strconv.FormatBool(*c.History.Enabled)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.History.Enabled = nil
				return nil
			}
			b, ok := parseBool(v)
			if !ok {
				return fmt.Errorf("history.enabled must be true or false, got %q", v)
			}
			c.History.Enabled = &b
			return nil
		},
		resolve: func() string { return strconv.FormatBool(GetHistoryEnabled()) },
	},
	{
		Name: "webhook.url", Env: "SHELF_WEBHOOK_URL",
		Help:    "Post activity to this URL after each command",
		get:     func(c *Config) string { return c.Webhook.URL },
		set:     setWebhookURL,
		resolve: GetWebhookURL,
	},
	{
		Name: "webhook.secret", Env: "SHELF_WEBHOOK_SECRET",
		Help: "HMAC secret used to sign webhook posts",
		get:  func(c *Config) string { return c.Webhook.Secret },
		set: func(c *Config, v string) error {
			c.Webhook.Secret = v
			return nil
		},
		resolve: func() string {
			if GetWebhookSecret() == "" {
				return ""
			}
			return "********"
		},
	},
}

// Keys returns the known config keys sorted by name.
func Keys() []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func lookup(name string) (Key, error) {
	for _, k := range keys {
		if k.Name == name {
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("unknown config key %q", name)
}

// FileValue returns the value stored in config.json for key ("" when unset).
func FileValue(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

// Resolved returns the effective value of key after env and defaults.
func Resolved(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	return k.resolve(), nil
}

// Set validates and stores value for key. An empty value unsets it.
func Set(name, value string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	return Update(func(cfg *Config) error {
		return k.set(cfg, strings.TrimSpace(value))
	})
}

func setURL(c *Config, v string) error {
	if v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.url must be an absolute URL, got %q", v)
		}
	}
	c.Server.URL = strings.TrimRight(v, "/")
	return nil
}

func setWebhookURL(c *Config, v string) error {
	if v != "" {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook.url must be an http(s) URL, got %q", v)
		}
	}
	c.Webhook.URL = v
	return nil
}

func setDuration(apply func(*Config, string)) func(*Config, string) error {
	return func(c *Config, v string) error {
		if v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid duration %q", v)
			}
		}
		apply(c, v)
		return nil
	}
}
