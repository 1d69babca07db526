package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "THIEP_WEB_"

	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultEnvironment     = "local"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultAPIBaseURL      = "http://localhost:8080/api/v1"
	defaultAPITimeout      = 10 * time.Second
	defaultCartBackend     = "memory"
	defaultCartPath        = "var/carts"
	defaultCartDSN         = "file:var/carts.db?_pragma=busy_timeout(5000)"
	defaultCartCollection  = "webCarts"
	defaultCartIdleTTL     = 30 * time.Minute
	defaultPreviewIdleTTL  = 20 * time.Minute
	defaultTemplatesDir    = "templates"
	defaultLocalesDir      = "locales"
	defaultPublicDir       = "public"
	defaultFallbackLocale  = "vi"
	minSessionKeyLength    = 32
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	DevMode     bool
	LogLevel    string
	Server      ServerConfig
	API         APIConfig
	Session     SessionConfig
	Cart        CartConfig
	Preview     PreviewConfig
	Paths       PathConfig
	Locale      LocaleConfig
	Analytics   AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// APIConfig points at the invitation REST API. Offline serves the bundled fixture catalog instead.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Offline bool
}

// SessionConfig holds cookie signing and encryption keys.
type SessionConfig struct {
	HashKey      string
	BlockKey     string
	CookieSecure bool
}

// CartConfig selects where carts are persisted.
type CartConfig struct {
	Backend    string
	Path       string
	DSN        string
	ProjectID  string
	Collection string
	IdleTTL    time.Duration
}

// PreviewConfig tunes the per-session preview coordinators.
type PreviewConfig struct {
	IdleTTL time.Duration
}

// PathConfig locates on-disk assets.
type PathConfig struct {
	Templates string
	Locales   string
	Public    string
}

// LocaleConfig controls language negotiation.
type LocaleConfig struct {
	Fallback  string
	Supported []string
}

// AnalyticsConfig enables the GA4 tag in the layout when MeasurementID is set.
type AnalyticsConfig struct {
	MeasurementID string
	Debug         bool
}

// IsLocal reports whether the app runs in a developer environment.
func (c Config) IsLocal() bool { return c.Environment == defaultEnvironment }

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

type lookupFunc func(string) (string, bool)

// Load assembles the configuration from defaults, .env, the process environment and
// explicit overrides, in increasing order of precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	env := strings.ToLower(stringWithDefault(lookup, "ENV", defaultEnvironment))
	cfg := Config{
		Environment: env,
		DevMode:     boolWithDefault(lookup, "DEV", env == defaultEnvironment),
		LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:     durationWithDefault(lookup, "READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "API_BASE_URL", defaultAPIBaseURL), "/"),
			Timeout: durationWithDefault(lookup, "API_TIMEOUT", defaultAPITimeout),
			Offline: boolWithDefault(lookup, "API_OFFLINE", false),
		},
		Session: SessionConfig{
			HashKey:      stringWithDefault(lookup, "SESSION_HASH_KEY", ""),
			BlockKey:     stringWithDefault(lookup, "SESSION_BLOCK_KEY", ""),
			CookieSecure: boolWithDefault(lookup, "COOKIE_SECURE", env != defaultEnvironment),
		},
		Cart: CartConfig{
			Backend:    strings.ToLower(stringWithDefault(lookup, "CART_BACKEND", defaultCartBackend)),
			Path:       stringWithDefault(lookup, "CART_PATH", defaultCartPath),
			DSN:        stringWithDefault(lookup, "CART_DSN", defaultCartDSN),
			ProjectID:  stringWithDefault(lookup, "CART_PROJECT_ID", ""),
			Collection: stringWithDefault(lookup, "CART_COLLECTION", defaultCartCollection),
			IdleTTL:    durationWithDefault(lookup, "CART_IDLE_TTL", defaultCartIdleTTL),
		},
		Preview: PreviewConfig{
			IdleTTL: durationWithDefault(lookup, "PREVIEW_IDLE_TTL", defaultPreviewIdleTTL),
		},
		Paths: PathConfig{
			Templates: stringWithDefault(lookup, "TEMPLATES_DIR", defaultTemplatesDir),
			Locales:   stringWithDefault(lookup, "LOCALES_DIR", defaultLocalesDir),
			Public:    stringWithDefault(lookup, "PUBLIC_DIR", defaultPublicDir),
		},
		Locale: LocaleConfig{
			Fallback:  strings.ToLower(stringWithDefault(lookup, "LOCALE_FALLBACK", defaultFallbackLocale)),
			Supported: csvWithDefault(lookup, "LOCALE_SUPPORTED"),
		},
		Analytics: AnalyticsConfig{
			MeasurementID: stringWithDefault(lookup, "GA_MEASUREMENT_ID", ""),
			Debug:         boolWithDefault(lookup, "ANALYTICS_DEBUG", false),
		},
	}
	if len(cfg.Locale.Supported) == 0 {
		cfg.Locale.Supported = []string{"vi", "en"}
	}
	if cfg.API.Offline {
		cfg.API.BaseURL = ""
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	} else if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if cfg.API.Timeout <= 0 {
		missing = append(missing, "API.Timeout")
	}
	if !cfg.API.Offline && !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		missing = append(missing, "API.BaseURL")
	}
	// Outside local development the cookie keys must be stable across restarts.
	if !cfg.IsLocal() {
		if len(cfg.Session.HashKey) < minSessionKeyLength {
			missing = append(missing, "Session.HashKey")
		}
		if n := len(cfg.Session.BlockKey); n != 16 && n != 24 && n != 32 {
			missing = append(missing, "Session.BlockKey")
		}
	} else if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Session.BlockKey")
	}

	switch cfg.Cart.Backend {
	case "memory":
	case "file":
		if strings.TrimSpace(cfg.Cart.Path) == "" {
			missing = append(missing, "Cart.Path")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.Cart.DSN) == "" {
			missing = append(missing, "Cart.DSN")
		}
	case "firestore":
		if strings.TrimSpace(cfg.Cart.ProjectID) == "" {
			missing = append(missing, "Cart.ProjectID")
		}
	default:
		missing = append(missing, "Cart.Backend")
	}
	if cfg.Cart.IdleTTL <= 0 {
		missing = append(missing, "Cart.IdleTTL")
	}
	if cfg.Preview.IdleTTL <= 0 {
		missing = append(missing, "Preview.IdleTTL")
	}

	supported := false
	for _, l := range cfg.Locale.Supported {
		if l == cfg.Locale.Fallback {
			supported = true
			break
		}
	}
	if !supported {
		missing = append(missing, "Locale.Fallback")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup lookupFunc, key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup lookupFunc, key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
