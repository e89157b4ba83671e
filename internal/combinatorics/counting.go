// Package combinatorics implements the counting formulas of elementary
// combinatorics (placements, permutations, combinations) and two urn-model
// probabilities.
//
// All functions are pure and safe for concurrent use. Results are exact:
// counts are *big.Int, probabilities are *big.Rat. A violated precondition is
// reported as an *ArgumentError and no value is returned.
package combinatorics

import (
	"math"
	"math/big"
)

// Factorial returns n!.
//
// Precondition: n >= 0.
// Postcondition: Factorial(0) == 1.
func Factorial(n int) (*big.Int, error) {
	if n < 0 {
		return nil, invalid("Factorial", CodeNegativeN)
	}
	return new(big.Int).MulRange(1, int64(n)), nil
}

// PlacementsWithoutRepetition returns the number of ordered selections of k
// distinct elements out of n: n!/(n-k)!.
//
// Precondition: 0 <= k <= n.
// Postcondition: result > 0.
func PlacementsWithoutRepetition(k, n int) (*big.Int, error) {
	const op = "PlacementsWithoutRepetition"
	if k > n {
		return nil, invalid(op, CodeKExceedsN)
	}
	if k < 0 {
		return nil, invalid(op, CodeNegativeK)
	}
	if k == 0 {
		return big.NewInt(1), nil
	}
	// n*(n-1)*...*(n-k+1)
	return new(big.Int).MulRange(int64(n)-int64(k)+1, int64(n)), nil
}

// PlacementsWithRepetition returns the number of ordered selections of k
// elements out of n when elements may repeat: n^k.
//
// Precondition: k >= 0. n may be any integer.
func PlacementsWithRepetition(k, n int) (*big.Int, error) {
	if k < 0 {
		return nil, invalid("PlacementsWithRepetition", CodeNegativeK)
	}
	return new(big.Int).Exp(big.NewInt(int64(n)), big.NewInt(int64(k)), nil), nil
}

// PermutationsWithRepetition returns the number of distinct orderings of n
// elements split into groups of indistinguishable elements:
// n! / (groups[0]! * groups[1]! * ...).
//
// Precondition: every group >= 0; sum(groups) == n; n >= 0.
// Postcondition: result is the exact multinomial coefficient.
func PermutationsWithRepetition(n int, groups ...int) (*big.Int, error) {
	const op = "PermutationsWithRepetition"
	sum := 0
	for _, g := range groups {
		if g < 0 {
			return nil, invalid(op, CodeNegativeGroup)
		}
		// sum stays within [0, n], so the running total cannot wrap.
		if g > n-sum {
			return nil, invalid(op, CodeGroupSum)
		}
		sum += g
	}
	if sum != n {
		return nil, invalid(op, CodeGroupSum)
	}
	if n < 0 {
		return nil, invalid(op, CodeNegativeN)
	}

	// Multinomial as a product of binomials keeps every step an exact integer.
	result := big.NewInt(1)
	placed := 0
	var step big.Int
	for _, g := range groups {
		placed += g
		result.Mul(result, step.Binomial(int64(placed), int64(g)))
	}
	return result, nil
}

// PermutationsWithoutRepetition returns the number of orderings of n distinct
// elements: n!.
//
// Precondition: n >= 0.
func PermutationsWithoutRepetition(n int) (*big.Int, error) {
	if n < 0 {
		return nil, invalid("PermutationsWithoutRepetition", CodeNegativeN)
	}
	return new(big.Int).MulRange(1, int64(n)), nil
}

// CombinationsWithoutRepetition returns the binomial coefficient
// n! / (k! * (n-k)!).
//
// Precondition: k >= 0, n >= 0, k <= n.
// Postcondition: result == CombinationsWithoutRepetition(n-k, n).
func CombinationsWithoutRepetition(k, n int) (*big.Int, error) {
	if k < 0 || n < 0 || k > n {
		return nil, invalid("CombinationsWithoutRepetition", CodeCombinationRange)
	}
	return new(big.Int).Binomial(int64(n), int64(k)), nil
}

// CombinationsWithRepetition returns the number of multisets of size k drawn
// from n kinds: CombinationsWithoutRepetition(k, n+k-1).
//
// Precondition: k >= 0, n >= 1.
// Postcondition: defined for every such k and n, including n+k-1 > math.MaxInt.
func CombinationsWithRepetition(k, n int) (*big.Int, error) {
	if k < 0 || n < 1 {
		return nil, invalid("CombinationsWithRepetition", CodeMultisetRange)
	}
	if k <= math.MaxInt-n+1 {
		return CombinationsWithoutRepetition(k, n+k-1)
	}
	return wideBinomial(k, n), nil
}

// wideBinomial returns C(n+k-1, m) with m = min(k, n-1), for n+k-1 beyond the
// int range. Each partial product of i consecutive integers divided by i! is
// exact.
func wideBinomial(k, n int) *big.Int {
	m := min(k, n-1)
	top := new(big.Int).Add(big.NewInt(int64(n)), big.NewInt(int64(k)))
	top.Sub(top, big.NewInt(int64(m)+1))

	result := big.NewInt(1)
	var factor big.Int
	for i := int64(1); i <= int64(m); i++ {
		factor.Add(top, big.NewInt(i))
		result.Mul(result, &factor)
		result.Quo(result, big.NewInt(i))
	}
	return result
}
