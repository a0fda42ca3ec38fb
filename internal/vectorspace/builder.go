package vectorspace

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 500

// Options tunes model construction.
type Options struct {
	MaxFeatures int
}

// Model is the frozen vocabulary, IDF table and condition matrix. It is never mutated after Build.
type Model struct {
	vocab   map[string]int
	terms   []string
	idf     []float64
	matrix  [][]float64
	norms   []float64
	builtAt time.Time
}

// Build derives a Model from the catalog.
//
// Every phrase contributes its unigrams and bigrams to its condition's term counts.
// Terms present in every condition carry no weight and are never selected.
// Selection runs in two passes. First, single words shared by two or more conditions
// are reserved by df*idf, which favours mid-frequency symptoms such as "fever", up to
// half of MaxFeatures. Then conditions take turns in catalog order, each offering its
// highest tf*idf term not yet taken, until MaxFeatures is reached.
// A condition left with an all-zero vector is a configuration fault.
func Build(cat *catalog.Catalog, opts Options) (*Model, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, domain.NewCatalogError("", "catalog is empty")
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultMaxFeatures
	}

	n := cat.Len()
	counts := make([]map[string]int, n)
	df := make(map[string]int)
	for i := 0; i < n; i++ {
		c := cat.At(i)
		tf := make(map[string]int)
		for _, phrase := range c.Symptoms() {
			for _, t := range Terms(phrase) {
				tf[t]++
			}
		}
		if len(tf) == 0 {
			return nil, domain.NewCatalogError(c.ID(), "symptoms contain no usable terms")
		}
		for t := range tf {
			df[t]++
		}
		counts[i] = tf
	}

	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log(float64(n) / float64(d))
	}

	selected := selectFeatures(counts, df, idf, opts.MaxFeatures)
	terms := make([]string, 0, len(selected))
	for t := range selected {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	m := &Model{
		vocab:   make(map[string]int, len(terms)),
		terms:   terms,
		idf:     make([]float64, len(terms)),
		matrix:  make([][]float64, n),
		norms:   make([]float64, n),
		builtAt: time.Now().UTC(),
	}
	for i, t := range terms {
		m.vocab[t] = i
		m.idf[i] = idf[t]
	}
	for i, tf := range counts {
		vec := make([]float64, len(terms))
		for t, cnt := range tf {
			if j, ok := m.vocab[t]; ok {
				vec[j] = float64(cnt) * m.idf[j]
			}
		}
		m.matrix[i] = vec
		m.norms[i] = norm(vec)
		if m.norms[i] == 0 {
			return nil, domain.NewCatalogError(cat.At(i).ID(),
				"no distinctive terms survive feature selection")
		}
	}
	return m, nil
}

type candidate struct {
	term   string
	weight float64
}

func selectFeatures(
	counts []map[string]int, df map[string]int, idf map[string]float64, limit int,
) map[string]struct{} {
	selected := reserveShared(df, idf, limit/2)

	ranked := make([][]string, len(counts))
	for i, tf := range counts {
		cands := make([]candidate, 0, len(tf))
		for t, cnt := range tf {
			if idf[t] > 0 {
				cands = append(cands, candidate{term: t, weight: float64(cnt) * idf[t]})
			}
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].weight != cands[b].weight {
				return cands[a].weight > cands[b].weight
			}
			return cands[a].term < cands[b].term
		})
		list := make([]string, len(cands))
		for j, c := range cands {
			list[j] = c.term
		}
		ranked[i] = list
	}

	next := make([]int, len(ranked))
	for len(selected) < limit {
		progress := false
		for i, list := range ranked {
			if len(selected) >= limit {
				break
			}
			for next[i] < len(list) {
				if _, taken := selected[list[next[i]]]; !taken {
					break
				}
				next[i]++
			}
			if next[i] < len(list) {
				selected[list[next[i]]] = struct{}{}
				next[i]++
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return selected
}

// reserveShared picks up to quota single-word terms that occur in at least two
// conditions, ranked by df*idf and then alphabetically.
func reserveShared(df map[string]int, idf map[string]float64, quota int) map[string]struct{} {
	shared := make([]candidate, 0)
	for t, d := range df {
		if d >= 2 && idf[t] > 0 && !strings.Contains(t, " ") {
			shared = append(shared, candidate{term: t, weight: float64(d) * idf[t]})
		}
	}
	sort.Slice(shared, func(a, b int) bool {
		if shared[a].weight != shared[b].weight {
			return shared[a].weight > shared[b].weight
		}
		return shared[a].term < shared[b].term
	})

	selected := make(map[string]struct{}, 2*quota)
	for _, c := range shared {
		if len(selected) >= quota {
			break
		}
		selected[c.term] = struct{}{}
	}
	return selected
}

// VocabularySize returns the number of features.
func (m *Model) VocabularySize() int { return len(m.terms) }

// Vocabulary returns a copy of the features in index order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Contains reports whether term is a feature.
func (m *Model) Contains(term string) bool {
	_, ok := m.vocab[term]
	return ok
}

// IDF returns the inverse document frequency of a feature (0 if absent).
func (m *Model) IDF(term string) float64 {
	if j, ok := m.vocab[term]; ok {
		return m.idf[j]
	}
	return 0
}

// Conditions returns the number of condition vectors.
func (m *Model) Conditions() int { return len(m.matrix) }

// ConditionVector returns a copy of the weighted vector at catalog position i.
func (m *Model) ConditionVector(i int) []float64 {
	out := make([]float64, len(m.matrix[i]))
	copy(out, m.matrix[i])
	return out
}

// BuiltAt returns the build timestamp.
func (m *Model) BuiltAt() time.Time { return m.builtAt }

func (m *Model) String() string {
	return fmt.Sprintf("vectorspace.Model{conditions=%d, features=%d}", len(m.matrix), len(m.terms))
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
