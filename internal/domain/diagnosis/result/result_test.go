package result

import (
	"testing"

	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
)

func TestNew(t *testing.T) {
	matched := []string{"fever", "cough"}
	r := New("influenza", "Influenza", 59, 0.5947, urgency.DoctorSoon, "General Physician", matched)
	matched[0] = "changed"

	if r.ConditionID() != "influenza" || r.Name() != "Influenza" {
		t.Errorf("id=%q name=%q", r.ConditionID(), r.Name())
	}
	if r.Confidence() != 59 || r.Score() != 0.5947 {
		t.Errorf("confidence=%d score=%f", r.Confidence(), r.Score())
	}
	if r.Urgency() != urgency.DoctorSoon || r.Specialist() != "General Physician" {
		t.Errorf("urgency=%q specialist=%q", r.Urgency(), r.Specialist())
	}
	if got := r.MatchedSymptoms(); len(got) != 2 || got[0] != "fever" {
		t.Errorf("MatchedSymptoms() = %v", got)
	}
}

func TestNew_NoMatches(t *testing.T) {
	r := New("x", "X", 40, 0.4, urgency.Routine, "GP", nil)
	if r.MatchedSymptoms() == nil || len(r.MatchedSymptoms()) != 0 {
		t.Errorf("MatchedSymptoms() = %#v, want empty non-nil", r.MatchedSymptoms())
	}
}
