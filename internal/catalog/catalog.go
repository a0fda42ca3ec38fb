// Package catalog holds the ordered, validated set of conditions the engine is built from.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/domain/condition"
)

// Catalog is an immutable, ordered list of conditions.
// Order is significant: it breaks ties between equally scored conditions.
type Catalog struct {
	conditions []condition.Condition
	index      map[string]int
	version    string
}

// New validates and creates a Catalog. The catalog must be non-empty and IDs must be unique.
func New(conditions []condition.Condition) (*Catalog, error) {
	if len(conditions) == 0 {
		return nil, domain.NewCatalogError("", "catalog is empty")
	}
	index := make(map[string]int, len(conditions))
	for i, c := range conditions {
		if c.ID() == "" {
			return nil, domain.NewCatalogError("", fmt.Sprintf("condition #%d has no ID", i))
		}
		if _, dup := index[c.ID()]; dup {
			return nil, domain.NewCatalogError(c.ID(), "duplicate condition ID")
		}
		index[c.ID()] = i
	}
	cs := make([]condition.Condition, len(conditions))
	copy(cs, conditions)

	return &Catalog{conditions: cs, index: index, version: fingerprint(cs)}, nil
}

// Len returns the number of conditions.
func (c *Catalog) Len() int { return len(c.conditions) }

// At returns the condition at catalog position i.
func (c *Catalog) At(i int) condition.Condition { return c.conditions[i] }

// Conditions returns a copy of all conditions in catalog order.
func (c *Catalog) Conditions() []condition.Condition {
	out := make([]condition.Condition, len(c.conditions))
	copy(out, c.conditions)
	return out
}

// Get returns a condition by ID.
func (c *Catalog) Get(id string) (condition.Condition, bool) {
	i, ok := c.index[id]
	if !ok {
		return condition.Condition{}, false
	}
	return c.conditions[i], true
}

// Position returns the catalog index of id, or -1.
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Version is a short content fingerprint; two catalogs with the same content share it.
func (c *Catalog) Version() string { return c.version }

func fingerprint(cs []condition.Condition) string {
	h := sha256.New()
	for _, c := range cs {
		rules := c.Rules()
		rs := make([]string, len(rules))
		for i, r := range rules {
			rs[i] = r.String()
		}
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1e",
			c.ID(), c.Name(), c.Urgency(), c.Specialist(),
			strings.Join(c.Symptoms(), "\x1d"), strings.Join(rs, "\x1d"))
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}
