package urgency

// Urgency is the response-time tier attached to a condition.
type Urgency string

// Urgency tiers, most severe first.
const (
	Emergency  Urgency = "emergency"
	Urgent     Urgency = "urgent"
	DoctorSoon Urgency = "doctor_soon"
	Routine    Urgency = "routine"
	SelfCare   Urgency = "self_care"
)

var severity = map[Urgency]int{
	Emergency:  0,
	Urgent:     1,
	DoctorSoon: 2,
	Routine:    3,
	SelfCare:   4,
}

// All returns every tier, most severe first.
func All() []Urgency {
	return []Urgency{Emergency, Urgent, DoctorSoon, Routine, SelfCare}
}

// IsValid checks if the tier is one of the five defined values.
func (u Urgency) IsValid() bool {
	_, ok := severity[u]
	return ok
}

// Severity returns 0 for emergency up to 4 for self_care, -1 if invalid.
func (u Urgency) Severity() int {
	if s, ok := severity[u]; ok {
		return s
	}
	return -1
}
