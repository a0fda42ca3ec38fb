package symptodex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/symptodex/internal/domain"
)

// Extractor turns a free-text description into short symptom phrases.
type Extractor interface {
	Extract(ctx context.Context, description string) ([]string, error)
}

// extractorAdapter marks caller extractor failures as provider errors.
type extractorAdapter struct {
	inner Extractor
}

func (a *extractorAdapter) Extract(ctx context.Context, description string) ([]string, error) {
	phrases, err := a.inner.Extract(ctx, description)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return phrases, nil
}
