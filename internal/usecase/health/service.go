package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; diagnoses still work.
	Degraded Status = "degraded"
	// Unhealthy indicates no model is published.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each dependency probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine    EngineChecker
	cache     CachePinger
	extractor ExtractorChecker
	timeout   time.Duration
}

// New creates a Service for the diagnosis engine.
func New(engine EngineChecker) *Service {
	return &Service{engine: engine, timeout: DefaultCheckTimeout}
}

// WithCache adds the result cache probe.
func (s *Service) WithCache(c CachePinger) *Service {
	s.cache = c
	return s
}

// WithExtractor adds the extraction provider probe.
func (s *Service) WithExtractor(e ExtractorChecker) *Service {
	s.extractor = e
	return s
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	engineOK := s.engine != nil && s.engine.Ready()
	checks["engine"] = result(engineOK)

	if s.cache != nil {
		checks["cache"] = result(s.probe(ctx, s.cache.Ping) == nil)
	}
	if s.extractor != nil {
		checks["extractor"] = result(s.probe(ctx, s.extractor.HealthCheck) == nil)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !engineOK {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
