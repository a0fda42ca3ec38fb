package vectorspace

import (
	"math"
	"sort"
)

// Query is an encoded symptom list: sparse weights over the model's features.
type Query struct {
	indices []int
	weights []float64
	norm    float64
}

// IsZero reports whether no query term is in the vocabulary.
func (q Query) IsZero() bool { return q.norm == 0 }

// Norm returns the Euclidean norm.
func (q Query) Norm() float64 { return q.norm }

// Terms returns the number of non-zero features.
func (q Query) Terms() int { return len(q.indices) }

// Encode projects phrases into the model's space with the same tokenization used at build time.
// Each occurrence of a feature adds its IDF; out-of-vocabulary terms are dropped.
func (m *Model) Encode(phrases []string) Query {
	counts := make(map[int]int)
	for _, p := range phrases {
		for _, t := range Terms(p) {
			if j, ok := m.vocab[t]; ok {
				counts[j]++
			}
		}
	}
	if len(counts) == 0 {
		return Query{}
	}

	q := Query{indices: make([]int, 0, len(counts))}
	for j := range counts {
		q.indices = append(q.indices, j)
	}
	sort.Ints(q.indices)
	q.weights = make([]float64, len(q.indices))
	var sum float64
	for k, j := range q.indices {
		w := float64(counts[j]) * m.idf[j]
		q.weights[k] = w
		sum += w * w
	}
	q.norm = math.Sqrt(sum)
	return q
}
