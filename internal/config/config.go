package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the streamreel API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Query    QueryConfig    `yaml:"query"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeoutSec  int             `yaml:"read_timeout_sec"`
	WriteTimeoutSec int             `yaml:"write_timeout_sec"`
	ShutdownSec     int             `yaml:"shutdown_timeout_sec"`
	CORSAllOrigins  bool            `yaml:"cors_all_origins"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-IP inbound rate limiting. Requests == 0 disables it.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// UpstreamConfig holds Twitch Helix settings.
type UpstreamConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ClientID    string        `yaml:"client_id"`
	AccessToken string        `yaml:"access_token"`
	PageSize    int           `yaml:"page_size"` // Helix "first", max 100
	TimeoutSec  int           `yaml:"timeout_sec"`
	MaxPages    int           `yaml:"max_pages"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the upstream client.
type BreakerConfig struct {
	Enabled      *bool   `yaml:"enabled"` // default true
	MaxRequests  uint32  `yaml:"max_requests"`
	IntervalSec  int     `yaml:"interval_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	FailureRatio float64 `yaml:"failure_ratio"`
	MinRequests  uint32  `yaml:"min_requests"`
}

// IsEnabled reports whether the breaker is on.
func (b BreakerConfig) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// CacheConfig holds response cache settings. The cache is optional.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QueryConfig holds request defaults.
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

const writeTimeoutSlackSec = 5

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimit.WindowSec <= 0 {
		c.HTTP.RateLimit.WindowSec = 60
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.twitch.tv/helix"
	}
	if c.Upstream.PageSize <= 0 {
		c.Upstream.PageSize = 50
	}
	if c.Upstream.TimeoutSec <= 0 {
		c.Upstream.TimeoutSec = 15
	}
	if c.Upstream.MaxPages <= 0 {
		c.Upstream.MaxPages = 50
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must outlast a cold collection walking every page at the full upstream timeout.
		c.HTTP.WriteTimeoutSec = c.Upstream.MaxPages*c.Upstream.TimeoutSec + writeTimeoutSlackSec
	}
	if c.Upstream.Breaker.MaxRequests == 0 {
		c.Upstream.Breaker.MaxRequests = 1
	}
	if c.Upstream.Breaker.IntervalSec <= 0 {
		c.Upstream.Breaker.IntervalSec = 60
	}
	if c.Upstream.Breaker.TimeoutSec <= 0 {
		c.Upstream.Breaker.TimeoutSec = 30
	}
	if c.Upstream.Breaker.FailureRatio <= 0 {
		c.Upstream.Breaker.FailureRatio = 0.6
	}
	if c.Upstream.Breaker.MinRequests == 0 {
		c.Upstream.Breaker.MinRequests = 5
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "streamreel:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 2
	}
	if c.Query.DefaultLimit <= 0 {
		c.Query.DefaultLimit = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimit.Requests < 0 {
		return fmt.Errorf("http.rate_limit.requests must be >= 0, got %d", c.HTTP.RateLimit.Requests)
	}
	if c.Upstream.ClientID == "" {
		return fmt.Errorf("upstream.client_id is required")
	}
	if c.Upstream.AccessToken == "" {
		return fmt.Errorf("upstream.access_token is required")
	}
	if c.Upstream.PageSize > 100 {
		return fmt.Errorf("upstream.page_size must be at most 100, got %d", c.Upstream.PageSize)
	}
	if c.Upstream.Breaker.FailureRatio > 1 {
		return fmt.Errorf("upstream.breaker.failure_ratio must be in (0, 1], got %v", c.Upstream.Breaker.FailureRatio)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("cache.db must be >= 0, got %d", c.Cache.DB)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
