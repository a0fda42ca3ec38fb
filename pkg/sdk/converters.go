package symptodex

import (
	"strings"

	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
)

func assessmentFromDomain(a diagnosisuc.Assessment) Diagnosis {
	matches := make([]Match, len(a.Results))
	for i := range a.Results {
		r := &a.Results[i]
		matches[i] = Match{
			ConditionID:     r.ConditionID(),
			ConditionName:   r.Name(),
			Confidence:      r.Confidence(),
			Score:           r.Score(),
			Urgency:         string(r.Urgency()),
			Specialist:      r.Specialist(),
			MatchedSymptoms: r.MatchedSymptoms(),
		}
	}
	return Diagnosis{
		AssessmentID: a.ID,
		ModelVersion: a.ModelVersion,
		Matches:      matches,
		Symptoms:     a.Symptoms,
	}
}

func conditionFromDomain(c condition.Condition) Condition {
	return Condition{
		ID:         c.ID(),
		Name:       c.Name(),
		Urgency:    string(c.Urgency()),
		Specialist: c.Specialist(),
		Symptoms:   c.Symptoms(),
	}
}

func urgencyOf(s string) urgency.Urgency {
	return urgency.Urgency(strings.ToLower(strings.TrimSpace(s)))
}
