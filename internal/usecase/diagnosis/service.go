package diagnosis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/request"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/metrics"
)

// Assessment is the outcome of one diagnosis request.
type Assessment struct {
	ID           string
	ModelVersion string
	Results      []result.Result
	// Symptoms is the phrase list that was scored, including extracted phrases.
	Symptoms []string
}

// InsufficientInformation reports whether nothing cleared the confidence floor.
func (a Assessment) InsufficientInformation() bool { return len(a.Results) == 0 }

// ModelInfo describes the published engine.
type ModelInfo struct {
	Version        string
	Source         string
	Conditions     int
	VocabularySize int
	BuiltAt        time.Time
}

// ConditionFilter narrows catalog listings. Empty fields match everything.
type ConditionFilter struct {
	Urgency    urgency.Urgency
	Specialist string
}

// Service owns the published engine and serves diagnoses against it.
// Rebuilds never block readers: a new engine is built aside and swapped in atomically.
type Service struct {
	current   atomic.Pointer[Engine]
	rebuildMu sync.Mutex

	source    CatalogSource
	opts      Options
	scorer    Scorer
	extractor Extractor
	logger    *zap.Logger

	defaultPageSize int
	maxPageSize     int
}

// New creates a diagnosis service. No engine is published until Reload or Rebuild succeeds.
func New(source CatalogSource, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:          source,
		opts:            opts,
		scorer:          EngineScorer{},
		logger:          logger,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithScorer replaces the scoring step (e.g. with a caching decorator).
func (s *Service) WithScorer(sc Scorer) *Service {
	if sc != nil {
		s.scorer = sc
	}
	return s
}

// WithExtractor enables free-text descriptions.
func (s *Service) WithExtractor(e Extractor) *Service {
	s.extractor = e
	return s
}

// WithPagination configures page size limits for condition listings.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Reload loads the catalog from the source and rebuilds.
func (s *Service) Reload(ctx context.Context) (ModelInfo, error) {
	if s.source == nil {
		return ModelInfo{}, fmt.Errorf("%w: no catalog source configured", domain.ErrInvalidCatalog)
	}
	cat, err := s.source.Load(ctx)
	if err != nil {
		metrics.ModelRebuildsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Catalog load failed", zap.String("source", s.source.Name()), zap.Error(err))
		return ModelInfo{}, fmt.Errorf("load catalog: %w", err)
	}
	return s.Rebuild(cat)
}

// Rebuild builds a new engine from cat and publishes it.
// On failure the previously published engine keeps serving.
func (s *Service) Rebuild(cat *catalog.Catalog) (ModelInfo, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	e, err := NewEngine(cat, s.opts)
	if err != nil {
		metrics.ModelRebuildsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Model build failed", zap.Error(err))
		return ModelInfo{}, err
	}

	prev := s.current.Swap(e)
	metrics.ModelRebuildsTotal.WithLabelValues("ok").Inc()
	metrics.ModelVocabularySize.Set(float64(e.Model().VocabularySize()))
	metrics.ModelConditions.Set(float64(cat.Len()))

	info := s.info(e)
	fields := []zap.Field{
		zap.String("version", info.Version),
		zap.Int("conditions", info.Conditions),
		zap.Int("vocabulary", info.VocabularySize),
		zap.Duration("duration", time.Since(start)),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_version", prev.Version()))
	}
	s.logger.Info("Model published", fields...)
	return info, nil
}

// Ready reports whether an engine is published.
func (s *Service) Ready() bool { return s.current.Load() != nil }

// Engine returns the published engine.
func (s *Service) Engine() (*Engine, error) {
	e := s.current.Load()
	if e == nil {
		return nil, domain.ErrModelNotReady
	}
	return e, nil
}

// Model describes the published engine.
func (s *Service) Model() (ModelInfo, error) {
	e, err := s.Engine()
	if err != nil {
		return ModelInfo{}, err
	}
	return s.info(e), nil
}

func (s *Service) info(e *Engine) ModelInfo {
	src := ""
	if s.source != nil {
		src = s.source.Name()
	}
	return ModelInfo{
		Version:        e.Version(),
		Source:         src,
		Conditions:     e.Catalog().Len(),
		VocabularySize: e.Model().VocabularySize(),
		BuiltAt:        e.Model().BuiltAt(),
	}
}

// Condition returns one catalog entry.
func (s *Service) Condition(id string) (condition.Condition, error) {
	e, err := s.Engine()
	if err != nil {
		return condition.Condition{}, err
	}
	c, ok := e.Catalog().Get(id)
	if !ok {
		return condition.Condition{}, fmt.Errorf("condition %q: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Conditions lists catalog entries in catalog order with offset-cursor pagination.
// It returns the page, the total number of matches and the next cursor ("" on the last page).
func (s *Service) Conditions(f ConditionFilter, cursor string, limit int) ([]condition.Condition, int, string, error) {
	e, err := s.Engine()
	if err != nil {
		return nil, 0, "", err
	}
	if f.Urgency != "" && !f.Urgency.IsValid() {
		return nil, 0, "", fmt.Errorf("%w: unknown urgency %q", domain.ErrInvalidRequest, f.Urgency)
	}
	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil || offset < 0 {
			return nil, 0, "", fmt.Errorf("%w: invalid cursor %q", domain.ErrInvalidRequest, cursor)
		}
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	var matches []condition.Condition
	for _, c := range e.Catalog().Conditions() {
		if f.Urgency != "" && c.Urgency() != f.Urgency {
			continue
		}
		if f.Specialist != "" && !strings.EqualFold(c.Specialist(), f.Specialist) {
			continue
		}
		matches = append(matches, c)
	}

	total := len(matches)
	if offset >= total {
		return []condition.Condition{}, total, "", nil
	}
	end := offset + limit
	next := ""
	if end < total {
		next = strconv.Itoa(end)
	} else {
		end = total
	}
	return matches[offset:end], total, next, nil
}

// Diagnose scores a request against the published engine.
// A description is turned into extra phrases when an extractor is configured.
func (s *Service) Diagnose(ctx context.Context, req request.Request) (Assessment, error) {
	e, err := s.Engine()
	if err != nil {
		metrics.DiagnosisRequestsTotal.WithLabelValues("error").Inc()
		return Assessment{}, err
	}

	req, err = s.expand(ctx, req)
	if err != nil {
		metrics.DiagnosisRequestsTotal.WithLabelValues("error").Inc()
		return Assessment{}, err
	}

	start := time.Now()
	symptoms := req.Symptoms()
	results, err := s.scorer.Score(ctx, e, symptoms, req.Demographics())
	if err != nil {
		metrics.DiagnosisRequestsTotal.WithLabelValues("error").Inc()
		return Assessment{}, fmt.Errorf("score: %w", err)
	}
	metrics.DiagnosisDuration.Observe(time.Since(start).Seconds())

	if len(results) == 0 {
		metrics.DiagnosisRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.DiagnosisRequestsTotal.WithLabelValues("matched").Inc()
		metrics.DiagnosisTopConfidence.Observe(float64(results[0].Confidence()))
	}

	s.logger.Debug("Diagnosis scored",
		zap.Int("symptoms", len(symptoms)),
		zap.Int("results", len(results)),
		zap.String("version", e.Version()),
	)

	return Assessment{
		ID:           uuid.NewString(),
		ModelVersion: e.Version(),
		Results:      results,
		Symptoms:     symptoms,
	}, nil
}

func (s *Service) expand(ctx context.Context, req request.Request) (request.Request, error) {
	if req.Description() == "" {
		return req, nil
	}
	if s.extractor == nil {
		if len(req.Symptoms()) == 0 {
			return req, domain.ErrExtractionUnavailable
		}
		s.logger.Debug("Description ignored: no extractor configured")
		return req, nil
	}
	phrases, err := s.extractor.Extract(ctx, req.Description())
	if err != nil {
		return req, fmt.Errorf("extract symptoms: %w", err)
	}
	return req.WithSymptoms(phrases), nil
}
