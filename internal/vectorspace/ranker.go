package vectorspace

// Similarities returns the cosine similarity of q against every condition, in catalog order.
// A zero query yields all zeros.
func (m *Model) Similarities(q Query) []float64 {
	out := make([]float64, len(m.matrix))
	if q.IsZero() {
		return out
	}
	for i, vec := range m.matrix {
		out[i] = cosine(q, vec, m.norms[i])
	}
	return out
}

// cosine is 0 when either side has zero norm. The result is clamped to [0, 1]
// to absorb rounding on near-parallel vectors.
func cosine(q Query, vec []float64, vecNorm float64) float64 {
	if q.norm == 0 || vecNorm == 0 {
		return 0
	}
	var dot float64
	for k, j := range q.indices {
		dot += q.weights[k] * vec[j]
	}
	s := dot / (q.norm * vecNorm)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
