package symptodex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath string
	catalogYAML []byte

	confidenceFloor *float64
	topK            int
	maxFeatures     int

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	extractor Extractor

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCatalogFile loads the condition catalog from a YAML file instead of the built-in one.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
		c.catalogYAML = nil
	})
}

// WithCatalogYAML builds the model from an in-memory YAML catalog document.
func WithCatalogYAML(data []byte) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogYAML = data
		c.catalogPath = ""
	})
}

// WithConfidenceFloor sets the minimum adjusted score a match needs (0..1).
// Default: 0.40.
func WithConfidenceFloor(floor float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.confidenceFloor = &floor
	})
}

// WithTopK caps the number of returned matches. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithMaxFeatures caps the vocabulary size. Default: 500.
func WithMaxFeatures(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxFeatures = n
	})
}

// WithRedisCache caches ranked results in Redis for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithExtractor enables free-text descriptions (see WithDescription).
func WithExtractor(e Extractor) Option {
	return optionFunc(func(c *clientConfig) {
		c.extractor = e
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// DiagnoseOption describes the patient for a single Diagnose call.
type DiagnoseOption func(*diagnoseConfig)

type diagnoseConfig struct {
	age         *int
	gender      string
	description string
}

// WithAge sets the patient's age in years.
func WithAge(years int) DiagnoseOption {
	return func(c *diagnoseConfig) { c.age = &years }
}

// WithGender sets the patient's gender ("male" or "female"; anything else is ignored).
func WithGender(g string) DiagnoseOption {
	return func(c *diagnoseConfig) { c.gender = g }
}

// WithDescription adds a free-text description. Requires WithExtractor.
func WithDescription(text string) DiagnoseOption {
	return func(c *diagnoseConfig) { c.description = text }
}
