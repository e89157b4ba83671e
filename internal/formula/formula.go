// Package formula catalogs the combinatorics functions as named, parameterized
// formulas grouped into families, and evaluates them from raw user input.
package formula

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
)

// Family groups related formulas, one per calculator tab.
type Family string

// Families in display order.
const (
	FamilyPermutations Family = "permutations"
	FamilyPlacements   Family = "placements"
	FamilyCombinations Family = "combinations"
	FamilyProbability  Family = "probability"
)

// Families returns every family in display order.
func Families() []Family {
	return []Family{FamilyPermutations, FamilyPlacements, FamilyCombinations, FamilyProbability}
}

// ParseFamily resolves a family by name.
//
// Postcondition: Returns (family, true) if name is a known family.
func ParseFamily(name string) (Family, bool) {
	for _, f := range Families() {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// ErrArity is returned when a formula receives the wrong number of arguments.
var ErrArity = errors.New("wrong number of arguments")

// Param names one formula input.
type Param struct {
	// Name is the symbol shown to the user, e.g. "k".
	Name string
	// Variadic marks a trailing parameter that accepts zero or more values.
	Variadic bool
}

// Formula is one registered combinatorics function.
type Formula struct {
	// ID is the canonical name, e.g. "placements_without_repetition".
	ID string
	// Aliases are alternate names resolved by the registry.
	Aliases []string
	// Family is the tab the formula belongs to.
	Family Family
	// Repetition distinguishes the two variants within a family.
	Repetition bool
	// Params lists the inputs in call order.
	Params []Param
	// Notation is the textbook formula.
	Notation string

	eval func(args []int) (Value, error)
}

// Variadic reports whether the last parameter accepts a list.
func (f *Formula) Variadic() bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1].Variadic
}

// Usage returns a synopsis such as "placements_without_repetition k n".
func (f *Formula) Usage() string {
	s := f.ID
	for _, p := range f.Params {
		if p.Variadic {
			s += " [" + p.Name + "...]"
			continue
		}
		s += " " + p.Name
	}
	return s
}

// Eval computes the formula.
//
// Precondition: f must come from a Registry or Builtins.
// Postcondition: Returns a Value, or an error wrapping ErrArity or
// combinatorics.ErrInvalidArgument.
func (f *Formula) Eval(args ...int) (Value, error) {
	fixed := len(f.Params)
	if f.Variadic() {
		fixed--
		if len(args) < fixed {
			return Value{}, fmt.Errorf("%s takes at least %d arguments, got %d: %w", f.ID, fixed, len(args), ErrArity)
		}
	} else if len(args) != fixed {
		return Value{}, fmt.Errorf("%s takes %d arguments, got %d: %w", f.ID, fixed, len(args), ErrArity)
	}
	return f.eval(args)
}

func intResult(i *big.Int, err error) (Value, error) {
	if err != nil {
		return Value{}, err
	}
	return IntValue(i), nil
}

// Builtins returns the eight formulas of the calculator.
func Builtins() []Formula {
	return []Formula{
		{
			ID:       "permutations_without_repetition",
			Aliases:  []string{"p", "pr_wo_rep"},
			Family:   FamilyPermutations,
			Params:   []Param{{Name: "n"}},
			Notation: "P_n = n!",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.PermutationsWithoutRepetition(a[0]))
			},
		},
		{
			ID:         "permutations_with_repetition",
			Aliases:    []string{"pr", "pr_w_rep"},
			Family:     FamilyPermutations,
			Repetition: true,
			Params:     []Param{{Name: "n"}, {Name: "groups", Variadic: true}},
			Notation:   "P = n! / (n_1! n_2! ... n_k!)",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.PermutationsWithRepetition(a[0], a[1:]...))
			},
		},
		{
			ID:       "placements_without_repetition",
			Aliases:  []string{"a", "pl_wo_rep"},
			Family:   FamilyPlacements,
			Params:   []Param{{Name: "k"}, {Name: "n"}},
			Notation: "A_k^n = n! / (n-k)!",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.PlacementsWithoutRepetition(a[0], a[1]))
			},
		},
		{
			ID:         "placements_with_repetition",
			Aliases:    []string{"ar", "pl_w_rep"},
			Family:     FamilyPlacements,
			Repetition: true,
			Params:     []Param{{Name: "k"}, {Name: "n"}},
			Notation:   "A_k^n = n^k",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.PlacementsWithRepetition(a[0], a[1]))
			},
		},
		{
			ID:       "combinations_without_repetition",
			Aliases:  []string{"c", "cm_wo_rep"},
			Family:   FamilyCombinations,
			Params:   []Param{{Name: "k"}, {Name: "n"}},
			Notation: "C_k^n = n! / (k! (n-k)!)",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.CombinationsWithoutRepetition(a[0], a[1]))
			},
		},
		{
			ID:         "combinations_with_repetition",
			Aliases:    []string{"cr", "cm_w_rep"},
			Family:     FamilyCombinations,
			Repetition: true,
			Params:     []Param{{Name: "k"}, {Name: "n"}},
			Notation:   "C_k^n = C_k^(n+k-1)",
			eval: func(a []int) (Value, error) {
				return intResult(combinatorics.CombinationsWithRepetition(a[0], a[1]))
			},
		},
		{
			ID:       "prob_all_marked",
			Aliases:  []string{"all_marked", "pall"},
			Family:   FamilyProbability,
			Params:   []Param{{Name: "k"}, {Name: "m"}, {Name: "n"}},
			Notation: "P = C_k^m / C_k^n",
			eval: func(a []int) (Value, error) {
				p, err := combinatorics.ProbAllMarked(a[0], a[1], a[2])
				if err != nil {
					return Value{}, err
				}
				return RatValue(p), nil
			},
		},
		{
			ID:       "prob_r_marked",
			Aliases:  []string{"r_marked", "pr_marked"},
			Family:   FamilyProbability,
			Params:   []Param{{Name: "r"}, {Name: "k"}, {Name: "m"}, {Name: "n"}},
			Notation: "P = C_r^m * C_(k-r)^(n-m) / C_k^n",
			eval: func(a []int) (Value, error) {
				p, err := combinatorics.ProbRMarked(a[0], a[1], a[2], a[3])
				if err != nil {
					return Value{}, err
				}
				return RatValue(p), nil
			},
		},
	}
}
