package diagnosis

import (
	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

// adjust adds the deltas of every matching rule to each raw score and clamps to [0, 1].
// Rules only re-weight conditions the symptoms already point at: a zero raw score stays zero.
func adjust(raw []float64, cat *catalog.Catalog, d patient.Demographics) []float64 {
	out := make([]float64, len(raw))
	copy(out, raw)
	if d.IsEmpty() {
		return out
	}
	for i, s := range raw {
		if s <= 0 {
			continue
		}
		for _, r := range cat.At(i).Rules() {
			if r.Applies(d) {
				s += r.Delta()
			}
		}
		out[i] = clamp01(s)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
