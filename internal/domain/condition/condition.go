package condition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/symptodex/internal/domain/condition/rule"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
)

var idRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// MaxIDLength caps condition identifiers.
const MaxIDLength = 64

// Condition is a catalog entry (immutable value object).
type Condition struct {
	id         string
	name       string
	symptoms   []string
	urgency    urgency.Urgency
	specialist string
	rules      []rule.Rule
}

// New validates and creates a Condition.
// ID: ^[a-z0-9_-]+$, 1-64 chars. Name and specialist: non-empty.
// Symptoms: at least one non-blank phrase; phrases are trimmed, order kept.
func New(
	id, name string, symptoms []string, u urgency.Urgency, specialist string, rules []rule.Rule,
) (Condition, error) {
	if id == "" {
		return Condition{}, fmt.Errorf("condition ID is required")
	}
	if len(id) > MaxIDLength {
		return Condition{}, fmt.Errorf("condition ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Condition{}, fmt.Errorf("condition ID must be lowercase alphanumeric with underscores and hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Condition{}, fmt.Errorf("condition name is required")
	}
	if !u.IsValid() {
		return Condition{}, fmt.Errorf("unknown urgency %q", u)
	}
	specialist = strings.TrimSpace(specialist)
	if specialist == "" {
		return Condition{}, fmt.Errorf("specialist is required")
	}

	phrases := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			return Condition{}, fmt.Errorf("symptom phrases must not be blank")
		}
		phrases = append(phrases, s)
	}
	if len(phrases) == 0 {
		return Condition{}, fmt.Errorf("at least one symptom is required")
	}

	rs := make([]rule.Rule, len(rules))
	copy(rs, rules)

	return Condition{
		id:         id,
		name:       name,
		symptoms:   phrases,
		urgency:    u,
		specialist: specialist,
		rules:      rs,
	}, nil
}

// ID returns the condition identifier.
func (c Condition) ID() string { return c.id }

// Name returns the display name.
func (c Condition) Name() string { return c.name }

// Symptoms returns a copy of the symptom phrases in catalog order.
func (c Condition) Symptoms() []string {
	out := make([]string, len(c.symptoms))
	copy(out, c.symptoms)
	return out
}

// Urgency returns the response-time tier.
func (c Condition) Urgency() urgency.Urgency { return c.urgency }

// Specialist returns the referral target.
func (c Condition) Specialist() string { return c.specialist }

// Rules returns a copy of the demographic rules.
func (c Condition) Rules() []rule.Rule {
	out := make([]rule.Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
