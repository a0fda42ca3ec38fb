package symptodex

import "github.com/kailas-cloud/symptodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound              = domain.ErrNotFound
	ErrInvalidRequest        = domain.ErrInvalidRequest
	ErrInvalidCatalog        = domain.ErrInvalidCatalog
	ErrModelNotReady         = domain.ErrModelNotReady
	ErrExtractionUnavailable = domain.ErrExtractionUnavailable
	ErrExtractionFailed      = domain.ErrExtractionFailed
)
