package vectorspace

import (
	"math"
	"reflect"
	"testing"
)

func TestEncode_DropsOutOfVocabulary(t *testing.T) {
	m, err := Build(embedded(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	q := m.Encode([]string{"xyzzy", "blorp glorp"})
	if !q.IsZero() || q.Terms() != 0 {
		t.Errorf("expected zero query, got %d terms", q.Terms())
	}
	for i, s := range m.Similarities(q) {
		if s != 0 {
			t.Fatalf("similarity %d = %f, want 0", i, s)
		}
	}
	if !m.Encode(nil).IsZero() {
		t.Error("empty input must encode to zero")
	}
}

func TestEncode_CountsRepeats(t *testing.T) {
	cat := mustCatalog(t, map[string][]string{"a": {"fever"}, "b": {"rash"}}, "a", "b")
	m, err := Build(cat, Options{})
	if err != nil {
		t.Fatal(err)
	}
	once := m.Encode([]string{"fever"})
	twice := m.Encode([]string{"fever", "Fever"})
	if math.Abs(twice.Norm()-2*once.Norm()) > 1e-12 {
		t.Errorf("norm %f, want %f", twice.Norm(), 2*once.Norm())
	}
}

func TestSimilarities_Cosine(t *testing.T) {
	cat := mustCatalog(t, map[string][]string{
		"a": {"fever", "cough"},
		"b": {"rash"},
		"c": {"headache"},
	}, "a", "b", "c")
	m, err := Build(cat, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got := m.Similarities(m.Encode([]string{"fever", "cough"}))
	if math.Abs(got[0]-1) > 1e-12 {
		t.Errorf("identical document similarity = %f, want 1", got[0])
	}
	if got[1] != 0 || got[2] != 0 {
		t.Errorf("disjoint similarities = %v", got[1:])
	}

	half := m.Similarities(m.Encode([]string{"fever"}))
	if want := 1 / math.Sqrt2; math.Abs(half[0]-want) > 1e-12 {
		t.Errorf("partial similarity = %f, want %f", half[0], want)
	}
}

func TestSimilarities_BoundedAndMatrixUnchanged(t *testing.T) {
	m, err := Build(embedded(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	before := make([][]float64, m.Conditions())
	for i := range before {
		before[i] = m.ConditionVector(i)
	}

	queries := [][]string{
		{"high fever", "body ache", "fatigue", "cough"},
		{"burning urination", "pelvic pain"},
		{"chest pain", "chest pain", "shortness of breath"},
		{"rash"},
	}
	for _, q := range queries {
		for i, s := range m.Similarities(m.Encode(q)) {
			if s < 0 || s > 1 || math.IsNaN(s) {
				t.Fatalf("similarity %d for %v = %f", i, q, s)
			}
		}
	}
	for i := range before {
		if !reflect.DeepEqual(before[i], m.ConditionVector(i)) {
			t.Fatalf("condition vector %d mutated", i)
		}
	}
}

func TestConditionVector_ReturnsCopy(t *testing.T) {
	m, err := Build(embedded(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	v := m.ConditionVector(0)
	for i := range v {
		v[i] = -1
	}
	for _, x := range m.ConditionVector(0) {
		if x < 0 {
			t.Fatal("mutating the copy changed the model")
		}
	}
}
