package diagnosis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
	"github.com/kailas-cloud/symptodex/internal/vectorspace"
)

// Engine defaults.
const (
	DefaultConfidenceFloor = 0.40
	DefaultTopK            = 5
	MaxTopK                = 50
)

// Options tunes scoring and model construction.
type Options struct {
	ConfidenceFloor float64
	TopK            int
	MaxFeatures     int
}

// DefaultOptions returns floor 0.40, top 5, 500 features.
func DefaultOptions() Options {
	return Options{
		ConfidenceFloor: DefaultConfidenceFloor,
		TopK:            DefaultTopK,
		MaxFeatures:     vectorspace.DefaultMaxFeatures,
	}
}

func (o Options) validate() error {
	if o.ConfidenceFloor < 0 || o.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor must be within [0, 1], got %v", o.ConfidenceFloor)
	}
	if o.TopK < 1 || o.TopK > MaxTopK {
		return fmt.Errorf("top_k must be within [1, %d], got %d", MaxTopK, o.TopK)
	}
	if o.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be positive, got %d", o.MaxFeatures)
	}
	return nil
}

// Engine is an immutable catalog + model pair. Diagnose is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	model   *vectorspace.Model
	opts    Options
	phrases []map[string]struct{}
	version string
}

// NewEngine builds the vector space for cat. Any catalog or option fault wraps ErrInvalidCatalog.
func NewEngine(cat *catalog.Catalog, opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
	}
	if cat == nil {
		return nil, domain.NewCatalogError("", "catalog is nil")
	}
	model, err := vectorspace.Build(cat, vectorspace.Options{MaxFeatures: opts.MaxFeatures})
	if err != nil {
		return nil, fmt.Errorf("build vector space: %w", err)
	}

	phrases := make([]map[string]struct{}, cat.Len())
	for i := range phrases {
		symptoms := cat.At(i).Symptoms()
		set := make(map[string]struct{}, len(symptoms))
		for _, s := range symptoms {
			set[vectorspace.NormalizePhrase(s)] = struct{}{}
		}
		phrases[i] = set
	}

	return &Engine{
		catalog: cat,
		model:   model,
		opts:    opts,
		phrases: phrases,
		version: fingerprint(cat.Version(), opts),
	}, nil
}

// fingerprint identifies what an engine returns: the same catalog scored with a
// different floor, K or feature cap is a different model.
func fingerprint(catalogVersion string, o Options) string {
	h := sha256.New()
	h.Write([]byte(catalogVersion))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.FormatFloat(o.ConfidenceFloor, 'g', -1, 64)))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.Itoa(o.TopK)))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.Itoa(o.MaxFeatures)))
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// Diagnose ranks the catalog against symptoms.
// Unknown or empty input is not an error: it yields an empty, non-nil slice.
// Demographic rules only re-weight conditions with a non-zero similarity to the
// symptoms; age or gender alone never surfaces a condition.
func (e *Engine) Diagnose(symptoms []string, d patient.Demographics) []result.Result {
	q := e.model.Encode(symptoms)
	if q.IsZero() {
		return []result.Result{}
	}
	raw := e.model.Similarities(q)
	scores := adjust(raw, e.catalog, d)
	return e.format(selectTop(scores, e.opts.ConfidenceFloor, e.opts.TopK), symptoms)
}

// Catalog returns the catalog the engine was built from.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Model returns the frozen vector space.
func (e *Engine) Model() *vectorspace.Model { return e.model }

// Options returns the scoring options.
func (e *Engine) Options() Options { return e.opts }

// Version fingerprints the catalog together with the scoring options.
// Cached results are keyed by it.
func (e *Engine) Version() string { return e.version }
