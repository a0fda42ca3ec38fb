// Package rule models demographic confidence adjustments as tagged predicates.
package rule

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

// Kind tags what a predicate inspects.
type Kind string

// Predicate kinds.
const (
	GenderIs Kind = "gender_is"
	AgeAbove Kind = "age_above"
	AgeBelow Kind = "age_below"
)

// Predicate is a single test over demographics.
type Predicate struct {
	kind   Kind
	gender patient.Gender
	age    int
}

// Gender returns a predicate that holds when the caller's gender equals g.
func Gender(g patient.Gender) Predicate { return Predicate{kind: GenderIs, gender: g} }

// OlderThan returns a predicate that holds when age > years.
func OlderThan(years int) Predicate { return Predicate{kind: AgeAbove, age: years} }

// YoungerThan returns a predicate that holds when age < years.
func YoungerThan(years int) Predicate { return Predicate{kind: AgeBelow, age: years} }

// Kind returns the predicate tag.
func (p Predicate) Kind() Kind { return p.kind }

// Holds evaluates the predicate. An attribute that is absent never satisfies it.
func (p Predicate) Holds(d patient.Demographics) bool {
	switch p.kind {
	case GenderIs:
		g := d.Gender()
		return g.IsKnown() && g == p.gender
	case AgeAbove:
		age, ok := d.Age()
		return ok && age > p.age
	case AgeBelow:
		age, ok := d.Age()
		return ok && age < p.age
	default:
		return false
	}
}

func (p Predicate) validate() error {
	switch p.kind {
	case GenderIs:
		if !p.gender.IsKnown() {
			return fmt.Errorf("gender predicate must be male or female, got %q", p.gender)
		}
	case AgeAbove, AgeBelow:
		if p.age < 0 || p.age > patient.MaxAge {
			return fmt.Errorf("%s threshold %d out of range", p.kind, p.age)
		}
	default:
		return fmt.Errorf("unknown predicate kind %q", p.kind)
	}
	return nil
}

// String renders the predicate for logs and fingerprints.
func (p Predicate) String() string {
	switch p.kind {
	case GenderIs:
		return fmt.Sprintf("gender==%s", p.gender)
	case AgeAbove:
		return fmt.Sprintf("age>%d", p.age)
	case AgeBelow:
		return fmt.Sprintf("age<%d", p.age)
	default:
		return string(p.kind)
	}
}

// Rule adds delta to a condition's score when all of its predicates hold.
type Rule struct {
	predicates []Predicate
	delta      float64
}

// New validates and creates a Rule.
// At least one predicate is required; delta must be non-zero and within [-1, 1].
func New(delta float64, predicates ...Predicate) (Rule, error) {
	if len(predicates) == 0 {
		return Rule{}, fmt.Errorf("rule needs at least one predicate")
	}
	if math.IsNaN(delta) || delta == 0 || delta < -1 || delta > 1 {
		return Rule{}, fmt.Errorf("rule delta must be non-zero and within [-1, 1], got %v", delta)
	}
	for _, p := range predicates {
		if err := p.validate(); err != nil {
			return Rule{}, err
		}
	}
	ps := make([]Predicate, len(predicates))
	copy(ps, predicates)
	return Rule{predicates: ps, delta: delta}, nil
}

// Delta returns the confidence adjustment on the 0-1 scale.
func (r Rule) Delta() float64 { return r.delta }

// Predicates returns a copy of the rule's predicates.
func (r Rule) Predicates() []Predicate {
	ps := make([]Predicate, len(r.predicates))
	copy(ps, r.predicates)
	return ps
}

// Applies reports whether every predicate holds for d.
func (r Rule) Applies(d patient.Demographics) bool {
	if len(r.predicates) == 0 {
		return false
	}
	for _, p := range r.predicates {
		if !p.Holds(d) {
			return false
		}
	}
	return true
}

// String renders the rule, e.g. "gender==female&age>40:+0.10".
func (r Rule) String() string {
	s := ""
	for i, p := range r.predicates {
		if i > 0 {
			s += "&"
		}
		s += p.String()
	}
	return fmt.Sprintf("%s:%+.2f", s, r.delta)
}
