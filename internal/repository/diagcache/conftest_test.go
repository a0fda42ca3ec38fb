package diagcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/db"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
	"github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
)

type mockScorer struct {
	results []result.Result
	err     error
	calls   int
}

func (m *mockScorer) Score(
	ctx context.Context, e *diagnosis.Engine, symptoms []string, d patient.Demographics,
) ([]result.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.results != nil {
		return m.results, nil
	}
	return diagnosis.EngineScorer{}.Score(ctx, e, symptoms, d)
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error

	deleted []string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func testEngine(t *testing.T) *diagnosis.Engine {
	t.Helper()
	return testEngineWith(t, diagnosis.DefaultOptions())
}

func testEngineWith(t *testing.T, opts diagnosis.Options) *diagnosis.Engine {
	t.Helper()
	cat, err := catalog.EmbeddedSource{}.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	e, err := diagnosis.NewEngine(cat, opts)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func newTestCachedScorer(t *testing.T, inner *mockScorer) (*CachedScorer, *mockKVStore) {
	t.Helper()
	ms := newMockKVStore()
	return New(inner, ms, time.Hour, nil, zap.NewNop()), ms
}
