package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

func intPtr(v int) *int { return &v }

func mustCondition(t *testing.T, id string, symptoms ...string) condition.Condition {
	t.Helper()
	c, err := condition.New(id, strings.ToUpper(id), symptoms, urgency.Routine, "GP", nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

const sampleYAML = `
conditions:
  - id: flu
    name: Flu
    urgency: doctor_soon
    specialist: General Physician
    symptoms: [high fever, cough]
    rules:
      - age_above: 65
        delta: 0.1
  - id: uti
    name: UTI
    urgency: doctor_soon
    specialist: Urologist
    symptoms: [burning urination]
    rules:
      - gender: female
        delta: 0.15
      - gender: male
        age_above: 50
        age_below: 90
        delta: -0.05
`

func TestNew_EmptyCatalog(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_DuplicateID(t *testing.T) {
	_, err := New([]condition.Condition{mustCondition(t, "a", "x"), mustCondition(t, "a", "y")})
	var ce *domain.CatalogError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CatalogError, got %v", err)
	}
	if ce.ConditionID != "a" {
		t.Errorf("ConditionID = %q", ce.ConditionID)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	cat, err := New([]condition.Condition{mustCondition(t, "a", "x"), mustCondition(t, "b", "y")})
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 2 || cat.At(1).ID() != "b" {
		t.Errorf("Len=%d At(1)=%q", cat.Len(), cat.At(1).ID())
	}
	if c, ok := cat.Get("a"); !ok || c.ID() != "a" {
		t.Error("Get(a) failed")
	}
	if _, ok := cat.Get("zzz"); ok {
		t.Error("Get(zzz) should miss")
	}
	if cat.Position("b") != 1 || cat.Position("zzz") != -1 {
		t.Error("Position mismatch")
	}
}

func TestCatalog_VersionIsContentFingerprint(t *testing.T) {
	a1, _ := New([]condition.Condition{mustCondition(t, "a", "x")})
	a2, _ := New([]condition.Condition{mustCondition(t, "a", "x")})
	b, _ := New([]condition.Condition{mustCondition(t, "a", "x", "y")})

	if a1.Version() != a2.Version() {
		t.Error("equal catalogs must share a version")
	}
	if a1.Version() == b.Version() {
		t.Error("different catalogs must differ in version")
	}
	if len(a1.Version()) != 12 {
		t.Errorf("version length = %d", len(a1.Version()))
	}
}

func TestParse_Valid(t *testing.T) {
	cat, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	uti, ok := cat.Get("uti")
	if !ok {
		t.Fatal("uti missing")
	}
	rules := uti.Rules()
	if len(rules) != 2 {
		t.Fatalf("rules = %d", len(rules))
	}
	if !rules[0].Applies(patient.NewDemographics(nil, "female")) {
		t.Error("female rule should apply")
	}
	if rules[1].Applies(patient.NewDemographics(intPtr(40), "male")) {
		t.Error("male>50 rule should not apply at 40")
	}
	if !rules[1].Applies(patient.NewDemographics(intPtr(60), "male")) {
		t.Error("male>50 rule should apply at 60")
	}
}

func TestParse_Faults(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"no conditions", "conditions: []"},
		{"unknown field", "conditions:\n  - id: a\n    nmae: A\n"},
		{"bad urgency", "conditions:\n  - {id: a, name: A, urgency: soon, specialist: GP, symptoms: [x]}\n"},
		{"no symptoms", "conditions:\n  - {id: a, name: A, urgency: routine, specialist: GP, symptoms: []}\n"},
		{"rule without predicate", "conditions:\n  - {id: a, name: A, urgency: routine, specialist: GP, symptoms: [x], rules: [{delta: 0.1}]}\n"},
		{"rule zero delta", "conditions:\n  - {id: a, name: A, urgency: routine, specialist: GP, symptoms: [x], rules: [{gender: female, delta: 0}]}\n"},
		{"rule bad gender", "conditions:\n  - {id: a, name: A, urgency: routine, specialist: GP, symptoms: [x], rules: [{gender: other, delta: 0.1}]}\n"},
		{"malformed", "conditions: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, domain.ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestEmbeddedSource(t *testing.T) {
	cat, err := EmbeddedSource{}.Load(context.Background())
	if err != nil {
		t.Fatalf("embedded catalog must be valid: %v", err)
	}
	if cat.Len() < 50 {
		t.Errorf("embedded catalog has %d conditions", cat.Len())
	}
	for _, id := range []string{"influenza", "uti", "stroke", "heart_attack"} {
		if _, ok := cat.Get(id); !ok {
			t.Errorf("embedded catalog is missing %q", id)
		}
	}
	stroke, _ := cat.Get("stroke")
	if stroke.Urgency() != urgency.Emergency {
		t.Errorf("stroke urgency = %q", stroke.Urgency())
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	src := FileSource{Path: path}
	cat, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("Len = %d", cat.Len())
	}
	if src.Name() != "file:"+path {
		t.Errorf("Name = %q", src.Name())
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load(context.Background())
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}
