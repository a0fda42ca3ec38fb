// Package diagcache caches ranked diagnoses in a key-value store.
package diagcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/db"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
	"github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
)

// KeyPrefix namespaces cache entries.
const KeyPrefix = "symptodex:diag:"

// store is the consumer interface for the diagnosis cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedScorer caches scorer output keyed by model version, phrases and demographics.
// Store failures degrade to a miss.
type CachedScorer struct {
	inner      diagnosis.Scorer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner diagnosis.Scorer,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedScorer{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Score returns cached results or calls the inner scorer and caches its output.
func (c *CachedScorer) Score(
	ctx context.Context, e *diagnosis.Engine, symptoms []string, d patient.Demographics,
) ([]result.Result, error) {
	if len(symptoms) == 0 {
		return c.inner.Score(ctx, e, symptoms, d)
	}
	key := cacheKey(e.Version(), symptoms, d)

	if rs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return rs, nil
	}
	c.incCache("miss")

	rs, err := c.inner.Score(ctx, e, symptoms, d)
	if err != nil {
		return nil, fmt.Errorf("score symptoms: %w", err)
	}

	c.putToCache(ctx, key, rs)
	return rs, nil
}

func (c *CachedScorer) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

func cacheKey(version string, symptoms []string, d patient.Demographics) string {
	h := sha256.New()
	h.Write([]byte(version))
	for _, s := range symptoms {
		h.Write([]byte{0x1f})
		h.Write([]byte(s))
	}
	h.Write([]byte{0x1e})
	if age, ok := d.Age(); ok {
		h.Write([]byte(strconv.Itoa(age)))
	}
	h.Write([]byte{0x1e})
	h.Write([]byte(d.Gender()))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	ConditionID string   `json:"condition_id"`
	Name        string   `json:"name"`
	Confidence  int      `json:"confidence"`
	Score       float64  `json:"score"`
	Urgency     string   `json:"urgency"`
	Specialist  string   `json:"specialist"`
	Matched     []string `json:"matched_symptoms"`
}

func (c *CachedScorer) getFromCache(ctx context.Context, key string) ([]result.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached diagnosis", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Failed to parse cached diagnosis", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return nil, false
	}
	rs := make([]result.Result, 0, len(entries))
	for _, en := range entries {
		u := urgency.Urgency(en.Urgency)
		if !u.IsValid() {
			c.logger.Warn("Cached diagnosis has invalid urgency", zap.String("key", key))
			c.evict(ctx, key)
			return nil, false
		}
		rs = append(rs, result.New(en.ConditionID, en.Name, en.Confidence, en.Score, u, en.Specialist, en.Matched))
	}
	return rs, true
}

// evict drops an unreadable entry so it is not parsed again on every request.
func (c *CachedScorer) evict(ctx context.Context, key string) {
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Failed to evict cached diagnosis", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedScorer) putToCache(ctx context.Context, key string, rs []result.Result) {
	entries := make([]entry, len(rs))
	for i := range rs {
		r := &rs[i]
		entries[i] = entry{
			ConditionID: r.ConditionID(),
			Name:        r.Name(),
			Confidence:  r.Confidence(),
			Score:       r.Score(),
			Urgency:     string(r.Urgency()),
			Specialist:  r.Specialist(),
			Matched:     r.MatchedSymptoms(),
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("Failed to encode diagnosis", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache diagnosis", zap.String("key", key), zap.Error(err))
	}
}
