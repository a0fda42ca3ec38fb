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

// Engine defaults. Mirrored here so config stays free of usecase imports.
const (
	DefaultConfidenceFloor = 0.40
	DefaultTopK            = 5
	MaxTopK                = 50
	DefaultMaxFeatures     = 500
)

// Config holds the symptodex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Engine    EngineConfig    `yaml:"engine"`
	Cache     CacheConfig     `yaml:"cache"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// EngineConfig holds scoring and catalog settings.
type EngineConfig struct {
	// ConfidenceFloor is a pointer so an explicit 0 survives ApplyDefaults.
	ConfidenceFloor *float64 `yaml:"confidence_floor"`
	TopK            int      `yaml:"top_k"`
	MaxFeatures     int      `yaml:"max_features"`
	CatalogPath     string   `yaml:"catalog_path"` // empty = embedded catalog
	DefaultPageSize int      `yaml:"default_page_size"`
	MaxPageSize     int      `yaml:"max_page_size"`
}

// CacheConfig holds the optional Redis result cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	DialTimeoutSec   int      `yaml:"dial_timeout_sec"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ExtractorConfig holds the optional LLM symptom extractor settings.
// The extractor is enabled when APIKey is set.
type ExtractorConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	FailureThreshold int    `yaml:"failure_threshold"`
	OpenTimeoutSec   int    `yaml:"open_timeout_sec"`
}

// Enabled reports whether the extractor should be wired.
func (e ExtractorConfig) Enabled() bool { return e.APIKey != "" }

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.ConfidenceFloor == nil {
		floor := DefaultConfidenceFloor
		c.Engine.ConfidenceFloor = &floor
	}
	if c.Engine.TopK <= 0 {
		c.Engine.TopK = DefaultTopK
	}
	if c.Engine.MaxFeatures <= 0 {
		c.Engine.MaxFeatures = DefaultMaxFeatures
	}
	if c.Engine.DefaultPageSize <= 0 {
		c.Engine.DefaultPageSize = 20
	}
	if c.Engine.MaxPageSize <= 0 {
		c.Engine.MaxPageSize = 100
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.DialTimeoutSec <= 0 {
		c.Cache.DialTimeoutSec = 5
	}
	if c.Extractor.Model == "" {
		c.Extractor.Model = "gpt-4o-mini"
	}
	if c.Extractor.TimeoutSec <= 0 {
		c.Extractor.TimeoutSec = 15
	}
	if c.Extractor.FailureThreshold <= 0 {
		c.Extractor.FailureThreshold = 5
	}
	if c.Extractor.OpenTimeoutSec <= 0 {
		c.Extractor.OpenTimeoutSec = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if f := c.Engine.ConfidenceFloor; f != nil && (*f < 0 || *f > 1) {
		return fmt.Errorf("engine.confidence_floor must be between 0 and 1, got %v", *f)
	}
	if c.Engine.TopK < 1 || c.Engine.TopK > MaxTopK {
		return fmt.Errorf("engine.top_k must be between 1 and %d, got %d", MaxTopK, c.Engine.TopK)
	}
	if c.Engine.DefaultPageSize > c.Engine.MaxPageSize {
		return fmt.Errorf("engine.default_page_size (%d) exceeds engine.max_page_size (%d)",
			c.Engine.DefaultPageSize, c.Engine.MaxPageSize)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("cache.db must be non-negative, got %d", c.Cache.DB)
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
