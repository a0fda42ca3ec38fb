package health

import "context"

// EngineChecker reports whether a diagnosis model is published.
type EngineChecker interface {
	Ready() bool
}

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ExtractorChecker checks symptom extraction provider availability.
type ExtractorChecker interface {
	HealthCheck(ctx context.Context) error
}
