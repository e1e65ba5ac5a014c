package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/simp-lee/pageshell/internal/route"
)

// Defaults applied by Validate when the corresponding field is unset.
const (
	DefaultClientBundle    = "/static/js/app.js"
	DefaultStylesheet      = "/static/css/app.css"
	DefaultMetricsPath     = "/metrics"
	DefaultShutdownTimeout = "5s"
	DefaultRateLimitStale  = "10m"
)

// Config is the top-level application configuration.
type Config struct {
	App    AppConfig    `koanf:"app"`
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
}

// AppConfig holds settings surfaced to the rendered pages.
type AppConfig struct {
	Name         string `koanf:"name"`
	ClientBundle string `koanf:"client_bundle"`
	Stylesheet   string `koanf:"stylesheet"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string          `koanf:"host"`
	Port            int             `koanf:"port"`
	Mode            string          `koanf:"mode"`
	TrustRequestID  bool            `koanf:"trust_request_id"`
	ShutdownTimeout string          `koanf:"shutdown_timeout"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
	Cache           CacheConfig     `koanf:"cache"`
	Metrics         MetricsConfig   `koanf:"metrics"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled    bool    `koanf:"enabled"`
	RPS        float64 `koanf:"rps"`
	Burst      int     `koanf:"burst"`
	StaleAfter string  `koanf:"stale_after"`
}

// CacheConfig holds rendered page cache settings.
type CacheConfig struct {
	Enabled   bool   `koanf:"enabled"`
	TTL       string `koanf:"ttl"`
	MaxSizeMB int    `koanf:"max_size_mb"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator; single underscores stay part of the key name.
// APP__SERVER__PORT=9090 overrides server.port and
// APP__SERVER__CACHE__MAX_SIZE_MB=64 overrides server.cache.max_size_mb.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps APP__SERVER__RATE_LIMIT__RPS to server.rate_limit.rps.
func envKey(s string) string {
	key := strings.TrimPrefix(s, "APP__")
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks supported values and normalizes fields in place.
func (c *Config) Validate() error {
	if err := c.validateApp(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateApp() error {
	name := strings.TrimSpace(c.App.Name)
	if name == "" {
		return fmt.Errorf("app.name is required")
	}
	c.App.Name = name

	c.App.ClientBundle = strings.TrimSpace(c.App.ClientBundle)
	if c.App.ClientBundle == "" {
		c.App.ClientBundle = DefaultClientBundle
	}
	c.App.Stylesheet = strings.TrimSpace(c.App.Stylesheet)
	if c.App.Stylesheet == "" {
		c.App.Stylesheet = DefaultStylesheet
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	c.Server.ShutdownTimeout = strings.TrimSpace(c.Server.ShutdownTimeout)
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if err := positiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	rl := &c.Server.RateLimit
	if rl.Enabled {
		if rl.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", rl.RPS)
		}
		if rl.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", rl.Burst)
		}
		rl.StaleAfter = strings.TrimSpace(rl.StaleAfter)
		if rl.StaleAfter == "" {
			rl.StaleAfter = DefaultRateLimitStale
		}
		if err := positiveDuration("server.rate_limit.stale_after", rl.StaleAfter); err != nil {
			return err
		}
	}

	cache := &c.Server.Cache
	cache.TTL = strings.TrimSpace(cache.TTL)
	if cache.Enabled {
		if err := positiveDuration("server.cache.ttl", cache.TTL); err != nil {
			return err
		}
		if cache.MaxSizeMB <= 0 {
			return fmt.Errorf("invalid server.cache.max_size_mb %d: must be positive when caching is enabled", cache.MaxSizeMB)
		}
	}

	metrics := &c.Server.Metrics
	metrics.Path = strings.TrimSpace(metrics.Path)
	if metrics.Path == "" {
		metrics.Path = DefaultMetricsPath
	}
	if !strings.HasPrefix(metrics.Path, "/") {
		return fmt.Errorf("invalid server.metrics.path %q: must start with '/'", metrics.Path)
	}
	if err := checkMetricsPath(metrics.Path); err != nil {
		return fmt.Errorf("invalid server.metrics.path %q: %w", metrics.Path, err)
	}

	return nil
}

// checkMetricsPath rejects metrics paths that would collide with a route the
// server already registers.
func checkMetricsPath(path string) error {
	if !route.IsCanonical(path) || path == "/" {
		return errors.New("must be a canonical path below the root")
	}
	if strings.ContainsAny(path, ":*") {
		return errors.New("must not contain route parameters")
	}
	for _, reserved := range []string{"/health", "/static", "/api"} {
		if path == reserved || strings.HasPrefix(path, reserved+"/") {
			return fmt.Errorf("conflicts with %s", reserved)
		}
	}
	if _, ok := route.Default().Lookup(path); ok {
		return errors.New("conflicts with a page route")
	}
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}

	return nil
}

// positiveDuration checks that value parses as a Go duration greater than zero.
func positiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", field, value)
	}
	return nil
}

// Duration parses a duration that Validate has already checked.
// It returns 0 for an empty or malformed value.
func Duration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
