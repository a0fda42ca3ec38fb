package result

import "github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"

// Result is a single ranked diagnosis.
type Result struct {
	conditionID string
	name        string
	confidence  int
	score       float64
	urgency     urgency.Urgency
	specialist  string
	matched     []string
}

// New creates a diagnosis result. Confidence is the integer percent, score the 0-1 value it was rounded from.
func New(
	conditionID, name string, confidence int, score float64,
	u urgency.Urgency, specialist string, matched []string,
) Result {
	m := make([]string, len(matched))
	copy(m, matched)
	return Result{
		conditionID: conditionID, name: name, confidence: confidence, score: score,
		urgency: u, specialist: specialist, matched: m,
	}
}

// ConditionID returns the catalog identifier.
func (r *Result) ConditionID() string { return r.conditionID }

// Name returns the condition display name.
func (r *Result) Name() string { return r.name }

// Confidence returns the integer percent in [0, 100].
func (r *Result) Confidence() int { return r.confidence }

// Score returns the adjusted similarity before rounding.
func (r *Result) Score() float64 { return r.score }

// Urgency returns the condition's urgency tier.
func (r *Result) Urgency() urgency.Urgency { return r.urgency }

// Specialist returns the referral target.
func (r *Result) Specialist() string { return r.specialist }

// MatchedSymptoms returns the caller phrases that appear verbatim in the condition.
func (r *Result) MatchedSymptoms() []string { return r.matched }
