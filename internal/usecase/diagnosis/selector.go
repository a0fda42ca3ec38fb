package diagnosis

import (
	"math"
	"sort"

	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	"github.com/kailas-cloud/symptodex/internal/vectorspace"
)

type scored struct {
	pos   int
	score float64
}

// selectTop keeps scores >= floor, orders them by score descending then catalog
// position ascending, and truncates to k.
func selectTop(scores []float64, floor float64, k int) []scored {
	kept := make([]scored, 0, k)
	for i, s := range scores {
		if s > 0 && s >= floor {
			kept = append(kept, scored{pos: i, score: s})
		}
	}
	sort.SliceStable(kept, func(a, b int) bool {
		if kept[a].score != kept[b].score {
			return kept[a].score > kept[b].score
		}
		return kept[a].pos < kept[b].pos
	})
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept
}

func (e *Engine) format(picked []scored, symptoms []string) []result.Result {
	out := make([]result.Result, 0, len(picked))
	for _, p := range picked {
		c := e.catalog.At(p.pos)
		out = append(out, result.New(
			c.ID(), c.Name(), toPercent(p.score), p.score,
			c.Urgency(), c.Specialist(), e.matched(p.pos, symptoms),
		))
	}
	return out
}

// matched returns caller phrases, in caller order and without repeats, that equal one
// of the condition's phrases ignoring case and spacing.
func (e *Engine) matched(pos int, symptoms []string) []string {
	set := e.phrases[pos]
	out := []string{}
	seen := make(map[string]struct{})
	for _, s := range symptoms {
		key := vectorspace.NormalizePhrase(s)
		if _, ok := set[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func toPercent(score float64) int {
	p := int(math.Round(score * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
