package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/rule"
	"github.com/kailas-cloud/symptodex/internal/domain/condition/urgency"
	"github.com/kailas-cloud/symptodex/internal/domain/patient"
)

// Document is the YAML form of a catalog.
type Document struct {
	Conditions []Definition `yaml:"conditions"`
}

// Definition is the YAML form of one condition.
type Definition struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Urgency    string           `yaml:"urgency"`
	Specialist string           `yaml:"specialist"`
	Symptoms   []string         `yaml:"symptoms"`
	Rules      []RuleDefinition `yaml:"rules"`
}

// RuleDefinition is the YAML form of a demographic rule.
// Each present field becomes one predicate; predicates are AND-ed.
type RuleDefinition struct {
	Gender   string  `yaml:"gender"`
	AgeAbove *int    `yaml:"age_above"`
	AgeBelow *int    `yaml:"age_below"`
	Delta    float64 `yaml:"delta"`
}

// Parse decodes a YAML catalog and validates it into a Catalog.
// Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewCatalogError("", "catalog is empty")
		}
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrInvalidCatalog, err)
	}
	return FromDefinitions(doc.Conditions)
}

// FromDefinitions validates definitions into a Catalog, keeping their order.
func FromDefinitions(defs []Definition) (*Catalog, error) {
	conditions := make([]condition.Condition, 0, len(defs))
	for i, d := range defs {
		c, err := d.toCondition()
		if err != nil {
			id := d.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return nil, domain.NewCatalogError(id, err.Error())
		}
		conditions = append(conditions, c)
	}
	return New(conditions)
}

func (d Definition) toCondition() (condition.Condition, error) {
	rules := make([]rule.Rule, 0, len(d.Rules))
	for i, rd := range d.Rules {
		r, err := rd.toRule()
		if err != nil {
			return condition.Condition{}, fmt.Errorf("rule #%d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return condition.New(d.ID, d.Name, d.Symptoms, urgency.Urgency(d.Urgency), d.Specialist, rules)
}

func (rd RuleDefinition) toRule() (rule.Rule, error) {
	var preds []rule.Predicate
	if rd.Gender != "" {
		g := patient.ParseGender(rd.Gender)
		if !g.IsKnown() {
			return rule.Rule{}, fmt.Errorf("unknown gender %q", rd.Gender)
		}
		preds = append(preds, rule.Gender(g))
	}
	if rd.AgeAbove != nil {
		preds = append(preds, rule.OlderThan(*rd.AgeAbove))
	}
	if rd.AgeBelow != nil {
		preds = append(preds, rule.YoungerThan(*rd.AgeBelow))
	}
	return rule.New(rd.Delta, preds...)
}

// EmbeddedSource loads the catalog compiled into the binary.
type EmbeddedSource struct{}

// Load parses the built-in catalog.
func (EmbeddedSource) Load(_ context.Context) (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Name identifies the source in logs.
func (EmbeddedSource) Name() string { return "embedded" }

// FileSource loads a catalog from a YAML file on every call, so edits are picked up on reload.
type FileSource struct {
	Path string
}

// Load reads and parses the file.
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(s.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidCatalog, s.Path, err)
	}
	return Parse(data)
}

// Name identifies the source in logs.
func (s FileSource) Name() string { return "file:" + s.Path }
