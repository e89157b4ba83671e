package formula

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormula is returned when a name resolves to no formula.
var ErrUnknownFormula = errors.New("unknown formula")

// Registry maps formula IDs and aliases to Formula definitions.
//
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	formulas []*Formula          // registration order
	byName   map[string]*Formula // id and aliases, lowercased
}

// NewRegistry creates a Registry populated with the given formulas.
//
// Precondition: No two formulas may share an ID or alias.
// Postcondition: Returns a Registry or an error on name collisions.
func NewRegistry(formulas []Formula) (*Registry, error) {
	r := &Registry{
		formulas: make([]*Formula, 0, len(formulas)),
		byName:   make(map[string]*Formula, len(formulas)*3),
	}
	for i := range formulas {
		f := &formulas[i]
		if f.ID == "" {
			return nil, fmt.Errorf("formula at index %d has no id", i)
		}
		if f.eval == nil {
			return nil, fmt.Errorf("formula %q has no implementation", f.ID)
		}
		for _, name := range append([]string{f.ID}, f.Aliases...) {
			key := strings.ToLower(name)
			if existing, ok := r.byName[key]; ok {
				return nil, fmt.Errorf("duplicate formula name %q: used by %q and %q", name, existing.ID, f.ID)
			}
			r.byName[key] = f
		}
		r.formulas = append(r.formulas, f)
	}
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in formulas.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtins())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a formula by ID or alias, ignoring case.
//
// Postcondition: Returns the formula, or an error wrapping ErrUnknownFormula.
func (r *Registry) Resolve(name string) (*Formula, error) {
	if f, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownFormula)
}

// Formulas returns all formulas in registration order.
func (r *Registry) Formulas() []*Formula {
	out := make([]*Formula, len(r.formulas))
	copy(out, r.formulas)
	return out
}

// Family returns the formulas of one family in registration order.
func (r *Registry) Family(family Family) []*Formula {
	var out []*Formula
	for _, f := range r.formulas {
		if f.Family == family {
			out = append(out, f)
		}
	}
	return out
}

// Variant returns the formula of family with the given repetition flag.
//
// Postcondition: Returns (formula, true) if the family has such a variant.
func (r *Registry) Variant(family Family, repetition bool) (*Formula, bool) {
	for _, f := range r.Family(family) {
		if f.Repetition == repetition {
			return f, true
		}
	}
	return nil, false
}
