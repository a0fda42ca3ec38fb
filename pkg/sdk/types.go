package symptodex

import "time"

// Urgency values, most severe first.
const (
	UrgencyEmergency  = "emergency"
	UrgencyUrgent     = "urgent"
	UrgencyDoctorSoon = "doctor_soon"
	UrgencyRoutine    = "routine"
	UrgencySelfCare   = "self_care"
)

// Diagnosis is the outcome of one Diagnose call.
type Diagnosis struct {
	AssessmentID string
	ModelVersion string
	Matches      []Match
	// Symptoms is the phrase list that was scored, including extracted phrases.
	Symptoms []string
}

// InsufficientInformation reports whether no condition cleared the confidence floor.
func (d Diagnosis) InsufficientInformation() bool { return len(d.Matches) == 0 }

// Match is one ranked condition.
type Match struct {
	ConditionID     string
	ConditionName   string
	Confidence      int     // 0..100
	Score           float64 // adjusted score, 0..1
	Urgency         string
	Specialist      string
	MatchedSymptoms []string
}

// Condition is a catalog entry.
type Condition struct {
	ID         string
	Name       string
	Urgency    string
	Specialist string
	Symptoms   []string
}

// ModelInfo describes the active model.
type ModelInfo struct {
	Version        string
	Source         string
	Conditions     int
	VocabularySize int
	BuiltAt        time.Time
}
