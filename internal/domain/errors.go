package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed diagnosis request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCatalog signals a configuration fault in the condition catalog.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrModelNotReady signals that no vector space model has been published yet.
	ErrModelNotReady = errors.New("model not ready")

	// ErrExtractionUnavailable signals that free-text extraction is not configured.
	ErrExtractionUnavailable = errors.New("symptom extraction unavailable")
	// ErrExtractionFailed signals a symptom extraction provider failure.
	ErrExtractionFailed = errors.New("symptom extraction failed")
)

// CatalogError pins a catalog fault to the offending condition.
type CatalogError struct {
	ConditionID string
	Reason      string
}

func (e *CatalogError) Error() string {
	if e.ConditionID == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidCatalog.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: condition %q: %s", ErrInvalidCatalog.Error(), e.ConditionID, e.Reason)
}

func (e *CatalogError) Unwrap() error { return ErrInvalidCatalog }

// NewCatalogError creates a catalog fault for a condition (id may be empty for catalog-wide faults).
func NewCatalogError(conditionID, reason string) error {
	return &CatalogError{ConditionID: conditionID, Reason: reason}
}
