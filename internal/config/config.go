package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheDriverNone   = "none"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config holds the bioscout API configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
	Observations ObservationsConfig `yaml:"observations"`
	RAG          RAGConfig          `yaml:"rag"`
	Fallback     FallbackConfig     `yaml:"fallback"`
	Cache        CacheConfig        `yaml:"cache"`
	Sessions     SessionsConfig     `yaml:"sessions"`
	Map          MapConfig          `yaml:"map"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ObservationsConfig points at the observations backend.
type ObservationsConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RAGConfig points at the question-answering collaborator. Empty base_url disables it.
type RAGConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// FallbackConfig holds the OpenAI-compatible chat fallback. Empty api_key disables it.
type FallbackConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	MaxTokens    int    `yaml:"max_tokens"`
	ContextLimit int    `yaml:"context_limit"`
}

// CacheConfig holds the observation cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, memory, redis (default: memory)
	TTLSec           int      `yaml:"ttl_sec"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SessionsConfig holds map session lifecycle settings.
type SessionsConfig struct {
	IdleTTLSec       int `yaml:"idle_ttl_sec"`
	EvictIntervalSec int `yaml:"evict_interval_sec"`
}

// MapConfig holds map presentation settings.
type MapConfig struct {
	Padding         float64 `yaml:"padding"`
	FlashDurationMs int     `yaml:"flash_duration_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding env variables, applying defaults
// and validating the result.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Observations.TimeoutSec <= 0 {
		c.Observations.TimeoutSec = 10
	}
	if c.RAG.TimeoutSec <= 0 {
		c.RAG.TimeoutSec = 30
	}
	if c.Fallback.MaxTokens <= 0 {
		c.Fallback.MaxTokens = 500
	}
	if c.Fallback.ContextLimit <= 0 {
		c.Fallback.ContextLimit = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverMemory
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Sessions.IdleTTLSec == 0 {
		c.Sessions.IdleTTLSec = 1800
	}
	if c.Sessions.EvictIntervalSec <= 0 {
		c.Sessions.EvictIntervalSec = 60
	}
	if c.Map.Padding <= 0 {
		c.Map.Padding = 0.1
	}
	if c.Map.FlashDurationMs <= 0 {
		c.Map.FlashDurationMs = 1500
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Observations.BaseURL == "" {
		return fmt.Errorf("observations.base_url is required")
	}
	if err := validateURL("observations.base_url", c.Observations.BaseURL); err != nil {
		return err
	}
	if c.RAG.BaseURL != "" {
		if err := validateURL("rag.base_url", c.RAG.BaseURL); err != nil {
			return err
		}
	}
	switch c.Cache.Driver {
	case CacheDriverNone, CacheDriverMemory:
		// ok
	case CacheDriverRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be %q, %q or %q, got %q",
			CacheDriverNone, CacheDriverMemory, CacheDriverRedis, c.Cache.Driver)
	}
	if c.Map.Padding > 1 {
		return fmt.Errorf("map.padding must be at most 1, got %g", c.Map.Padding)
	}
	return nil
}

// RAGEnabled reports whether the RAG collaborator is configured.
func (c *Config) RAGEnabled() bool { return c.RAG.BaseURL != "" }

// FallbackEnabled reports whether the chat fallback is configured.
func (c *Config) FallbackEnabled() bool { return c.Fallback.APIKey != "" }

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
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
