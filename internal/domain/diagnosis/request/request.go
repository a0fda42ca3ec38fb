package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

// Request limits.
const (
	MaxSymptoms       = 50
	MaxSymptomLength  = 200
	MaxDescriptionLen = 4096
)

// Request is a validated diagnosis query.
type Request struct {
	symptoms     []string
	description  string
	demographics patient.Demographics
}

// New validates and normalizes diagnosis parameters.
// Blank phrases are dropped; an empty symptom list is valid and yields no matches.
// Age and gender are optional; invalid values are treated as absent.
func New(symptoms []string, description string, age *int, gender string) (Request, error) {
	if len(symptoms) > MaxSymptoms {
		return Request{}, fmt.Errorf("too many symptoms (max %d)", MaxSymptoms)
	}
	phrases := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) > MaxSymptomLength {
			return Request{}, fmt.Errorf("symptom too long (max %d chars)", MaxSymptomLength)
		}
		phrases = append(phrases, s)
	}
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLen {
		return Request{}, fmt.Errorf("description too long (max %d chars)", MaxDescriptionLen)
	}

	return Request{
		symptoms:     phrases,
		description:  description,
		demographics: patient.NewDemographics(age, gender),
	}, nil
}

// WithSymptoms returns a copy with extra phrases appended (e.g. extracted from the description).
// Phrases already present (case-insensitive) are skipped; phrases beyond MaxSymptoms are dropped.
func (r Request) WithSymptoms(extra []string) Request {
	out := make([]string, 0, len(r.symptoms)+len(extra))
	out = append(out, r.symptoms...)
	seen := make(map[string]bool, cap(out))
	for _, s := range r.symptoms {
		seen[fold(s)] = true
	}
	for _, s := range extra {
		if len(out) >= MaxSymptoms {
			break
		}
		s = strings.TrimSpace(s)
		if s == "" || len(s) > MaxSymptomLength || seen[fold(s)] {
			continue
		}
		seen[fold(s)] = true
		out = append(out, s)
	}
	r.symptoms = out
	return r
}

// Symptoms returns a copy of the symptom phrases in caller order.
func (r Request) Symptoms() []string {
	out := make([]string, len(r.symptoms))
	copy(out, r.symptoms)
	return out
}

// Description returns the free-text description (may be empty).
func (r Request) Description() string { return r.description }

// Demographics returns the caller's optional age and gender.
func (r Request) Demographics() patient.Demographics { return r.demographics }

// IsEmpty reports whether neither phrases nor a description were supplied.
func (r Request) IsEmpty() bool { return len(r.symptoms) == 0 && r.description == "" }

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
