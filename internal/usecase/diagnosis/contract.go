package diagnosis

import (
	"context"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

// CatalogSource supplies the catalog on startup and on every reload.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Name() string
}

// Extractor turns a free-text description into short symptom phrases.
type Extractor interface {
	Extract(ctx context.Context, description string) ([]string, error)
}

// Scorer ranks symptoms against a published engine. Decorators (e.g. a result cache) wrap it.
type Scorer interface {
	Score(ctx context.Context, e *Engine, symptoms []string, d patient.Demographics) ([]result.Result, error)
}

// EngineScorer scores directly on the engine.
type EngineScorer struct{}

// Score delegates to Engine.Diagnose.
func (EngineScorer) Score(
	_ context.Context, e *Engine, symptoms []string, d patient.Demographics,
) ([]result.Result, error) {
	return e.Diagnose(symptoms, d), nil
}
