package condition

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/symptodex/internal/domain/condition/rule"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

func TestNew_Valid(t *testing.T) {
	r, err := rule.New(0.15, rule.Gender(patient.Female))
	if err != nil {
		t.Fatal(err)
	}
	c, err := New("uti", " Urinary Tract Infection ",
		[]string{" burning urination ", "frequent urination"},
		urgency.DoctorSoon, "Urologist", []rule.Rule{r})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "uti" || c.Name() != "Urinary Tract Infection" {
		t.Errorf("got id=%q name=%q", c.ID(), c.Name())
	}
	if got := c.Symptoms(); len(got) != 2 || got[0] != "burning urination" {
		t.Errorf("symptoms = %v", got)
	}
	if c.Urgency() != urgency.DoctorSoon || c.Specialist() != "Urologist" {
		t.Errorf("urgency=%q specialist=%q", c.Urgency(), c.Specialist())
	}
	if len(c.Rules()) != 1 {
		t.Errorf("rules = %d, want 1", len(c.Rules()))
	}
}

func TestNew_Invalid(t *testing.T) {
	long := strings.Repeat("a", MaxIDLength+1)
	tests := []struct {
		name       string
		id         string
		title      string
		symptoms   []string
		u          urgency.Urgency
		specialist string
	}{
		{"empty id", "", "X", []string{"a"}, urgency.Routine, "GP"},
		{"long id", long, "X", []string{"a"}, urgency.Routine, "GP"},
		{"uppercase id", "Flu", "X", []string{"a"}, urgency.Routine, "GP"},
		{"empty name", "x", "  ", []string{"a"}, urgency.Routine, "GP"},
		{"bad urgency", "x", "X", []string{"a"}, "soonish", "GP"},
		{"no specialist", "x", "X", []string{"a"}, urgency.Routine, ""},
		{"no symptoms", "x", "X", nil, urgency.Routine, "GP"},
		{"blank symptom", "x", "X", []string{"a", " "}, urgency.Routine, "GP"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.title, tc.symptoms, tc.u, tc.specialist, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCondition_AccessorsReturnCopies(t *testing.T) {
	input := []string{"fever", "cough"}
	c, err := New("flu", "Flu", input, urgency.Routine, "GP", nil)
	if err != nil {
		t.Fatal(err)
	}
	input[0] = "changed"
	got := c.Symptoms()
	got[1] = "changed"
	if s := c.Symptoms(); s[0] != "fever" || s[1] != "cough" {
		t.Errorf("condition mutated through aliasing: %v", s)
	}
}
