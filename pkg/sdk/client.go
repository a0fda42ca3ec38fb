package symptodex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/db"
	dbRedis "github.com/kailas-cloud/symptodex/internal/db/redis"
	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/request"
	"github.com/kailas-cloud/symptodex/internal/metrics"
	"github.com/kailas-cloud/symptodex/internal/repository/diagcache"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
	healthuc "github.com/kailas-cloud/symptodex/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = time.Hour
)

// diagnosisUseCase is the internal surface the client drives (swappable in tests).
type diagnosisUseCase interface {
	Diagnose(ctx context.Context, req request.Request) (diagnosisuc.Assessment, error)
	Reload(ctx context.Context) (diagnosisuc.ModelInfo, error)
	Model() (diagnosisuc.ModelInfo, error)
	Condition(id string) (condition.Condition, error)
	Conditions(f diagnosisuc.ConditionFilter, cursor string, limit int) ([]condition.Condition, int, string, error)
}

// Client is the symptodex SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	diagSvc   diagnosisUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New builds the model and returns a ready Client.
// The provided context bounds catalog loading and the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	engineOpts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	svc := diagnosisuc.New(catalogSource(cfg), engineOpts, nil)
	healthSvc := healthuc.New(svc)

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		store, err = createStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		svc.WithScorer(diagcache.New(diagnosisuc.EngineScorer{}, store, ttl, metrics.DiagnosisCacheTotal, nil))
		healthSvc.WithCache(store)
	}

	if cfg.extractor != nil {
		svc.WithExtractor(&extractorAdapter{inner: cfg.extractor})
		if hc, ok := cfg.extractor.(healthuc.ExtractorChecker); ok {
			healthSvc.WithExtractor(hc)
		}
	}

	c := &Client{store: store, diagSvc: svc, healthSvc: healthSvc, obs: obs}
	if _, err := c.Reload(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func engineOptions(cfg *clientConfig) (diagnosisuc.Options, error) {
	opts := diagnosisuc.DefaultOptions()
	if cfg.confidenceFloor != nil {
		opts.ConfidenceFloor = *cfg.confidenceFloor
	}
	if cfg.topK != 0 {
		opts.TopK = cfg.topK
	}
	if cfg.maxFeatures != 0 {
		opts.MaxFeatures = cfg.maxFeatures
	}
	if opts.ConfidenceFloor < 0 || opts.ConfidenceFloor > 1 {
		return opts, fmt.Errorf("symptodex: confidence floor must be in [0,1], got %v", opts.ConfidenceFloor)
	}
	if opts.TopK < 1 || opts.TopK > diagnosisuc.MaxTopK {
		return opts, fmt.Errorf("symptodex: top k must be in [1,%d], got %d", diagnosisuc.MaxTopK, opts.TopK)
	}
	if opts.MaxFeatures < 1 {
		return opts, fmt.Errorf("symptodex: max features must be positive, got %d", opts.MaxFeatures)
	}
	return opts, nil
}

func catalogSource(cfg *clientConfig) diagnosisuc.CatalogSource {
	switch {
	case cfg.catalogYAML != nil:
		return yamlSource{data: cfg.catalogYAML}
	case cfg.catalogPath != "":
		return catalog.FileSource{Path: cfg.catalogPath}
	default:
		return catalog.EmbeddedSource{}
	}
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.cacheAddrs,
		Password: cfg.cachePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("symptodex: create redis store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("symptodex: cache not ready: %w", err)
	}
	return s, nil
}

// yamlSource serves a catalog document held in memory.
type yamlSource struct {
	data []byte
}

func (s yamlSource) Load(_ context.Context) (*catalog.Catalog, error) {
	return catalog.Parse(s.data)
}

func (yamlSource) Name() string { return "inline" }

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Diagnose ranks catalog conditions against the given symptom phrases.
// An empty phrase list is not an error: the result simply has no matches.
// WithAge and WithGender only re-weight conditions the symptoms already point at.
func (c *Client) Diagnose(ctx context.Context, symptoms []string, opts ...DiagnoseOption) (d Diagnosis, err error) {
	start := time.Now()
	defer func() { c.obs.observe("diagnose", start, err) }()

	dc := &diagnoseConfig{}
	for _, o := range opts {
		o(dc)
	}

	req, err := request.New(symptoms, dc.description, dc.age, dc.gender)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	a, err := c.diagSvc.Diagnose(ctx, req)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("diagnose: %w", err)
	}
	c.obs.observeMatches(len(a.Results))
	return assessmentFromDomain(a), nil
}

// Condition returns one catalog entry.
func (c *Client) Condition(id string) (cond Condition, err error) {
	start := time.Now()
	defer func() { c.obs.observe("condition", start, err) }()

	dc, err := c.diagSvc.Condition(id)
	if err != nil {
		return Condition{}, fmt.Errorf("get condition: %w", err)
	}
	return conditionFromDomain(dc), nil
}

// Conditions lists the whole catalog in catalog order.
// Empty urgency or specialist match everything.
func (c *Client) Conditions(urgency, specialist string) (out []Condition, err error) {
	start := time.Now()
	defer func() { c.obs.observe("conditions", start, err) }()

	filter := diagnosisuc.ConditionFilter{Urgency: urgencyOf(urgency), Specialist: specialist}

	cursor := ""
	for {
		page, _, next, err := c.diagSvc.Conditions(filter, cursor, 0)
		if err != nil {
			return nil, fmt.Errorf("list conditions: %w", err)
		}
		for _, dc := range page {
			out = append(out, conditionFromDomain(dc))
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if out == nil {
		out = []Condition{}
	}
	return out, nil
}

// Model describes the active model.
func (c *Client) Model() (ModelInfo, error) {
	info, err := c.diagSvc.Model()
	if err != nil {
		return ModelInfo{}, fmt.Errorf("model info: %w", err)
	}
	return ModelInfo(info), nil
}

// Reload re-reads the catalog and swaps in a new model.
// On failure the previous model keeps serving.
func (c *Client) Reload(ctx context.Context) (info ModelInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	mi, err := c.diagSvc.Reload(ctx)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("symptodex: reload: %w", err)
	}
	return ModelInfo(mi), nil
}
