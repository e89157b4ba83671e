package combinatorics_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
)

func factorial(t require.TestingT, n int) *big.Int {
	f, err := combinatorics.Factorial(n)
	require.NoError(t, err)
	return f
}

func requireInvalid(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, combinatorics.ErrInvalidArgument), "error must wrap ErrInvalidArgument")
	var argErr *combinatorics.ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, code, argErr.Code)
	assert.Equal(t, combinatorics.Message(code), argErr.Msg)
}

func TestFactorial(t *testing.T) {
	cases := map[int]int64{0: 1, 1: 1, 2: 2, 5: 120, 10: 3628800, 20: 2432902008176640000}
	for n, want := range cases {
		assert.Equal(t, big.NewInt(want).String(), factorial(t, n).String(), "%d!", n)
	}
	_, err := combinatorics.Factorial(-1)
	requireInvalid(t, err, combinatorics.CodeNegativeN)
}

func TestFactorial_ExactBeyondInt64(t *testing.T) {
	want, ok := new(big.Int).SetString("51090942171709440000", 10)
	require.True(t, ok)
	assert.Equal(t, want.String(), factorial(t, 21).String())
}

func TestPlacementsWithoutRepetition(t *testing.T) {
	got, err := combinatorics.PlacementsWithoutRepetition(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "20", got.String())

	got, err = combinatorics.PlacementsWithoutRepetition(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	got, err = combinatorics.PlacementsWithoutRepetition(5, 5)
	require.NoError(t, err)
	assert.Equal(t, "120", got.String())
}

func TestPlacementsWithoutRepetition_LargestN(t *testing.T) {
	got, err := combinatorics.PlacementsWithoutRepetition(0, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	got, err = combinatorics.PlacementsWithoutRepetition(1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(math.MaxInt).String(), got.String())

	got, err = combinatorics.PlacementsWithoutRepetition(2, math.MaxInt)
	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(math.MaxInt), big.NewInt(math.MaxInt-1))
	assert.Equal(t, want.String(), got.String())
}

func TestPlacementsWithoutRepetition_Rejects(t *testing.T) {
	got, err := combinatorics.PlacementsWithoutRepetition(6, 5)
	assert.Nil(t, got)
	requireInvalid(t, err, combinatorics.CodeKExceedsN)

	_, err = combinatorics.PlacementsWithoutRepetition(-1, 5)
	requireInvalid(t, err, combinatorics.CodeNegativeK)

	_, err = combinatorics.PlacementsWithoutRepetition(0, -1)
	requireInvalid(t, err, combinatorics.CodeKExceedsN)
}

func TestPlacementsWithoutRepetition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")

		got, err := combinatorics.PlacementsWithoutRepetition(k, n)
		require.NoError(rt, err)

		want := new(big.Int).Quo(factorial(rt, n), factorial(rt, n-k))
		assert.Equal(rt, want.String(), got.String(), "A(%d,%d) must equal n!/(n-k)!", k, n)
		assert.Equal(rt, 1, got.Sign(), "placements are always positive")
	})
}

func TestPlacementsWithoutRepetition_MatchesEnumeration(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 7).Draw(rt, "n")
		k := rapid.IntRange(1, n).Draw(rt, "k")

		got, err := combinatorics.PlacementsWithoutRepetition(k, n)
		require.NoError(rt, err)
		assert.Equal(rt, int64(len(combin.Permutations(n, k))), got.Int64())
	})
}

func TestPlacementsWithRepetition(t *testing.T) {
	got, err := combinatorics.PlacementsWithRepetition(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "25", got.String())

	got, err = combinatorics.PlacementsWithRepetition(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	got, err = combinatorics.PlacementsWithRepetition(3, -2)
	require.NoError(t, err)
	assert.Equal(t, "-8", got.String())

	_, err = combinatorics.PlacementsWithRepetition(-1, 5)
	requireInvalid(t, err, combinatorics.CodeNegativeK)
}

func TestPlacementsWithRepetition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(0, 40).Draw(rt, "k")
		n := rapid.IntRange(0, 40).Draw(rt, "n")

		got, err := combinatorics.PlacementsWithRepetition(k, n)
		require.NoError(rt, err)

		want := big.NewInt(1)
		for i := 0; i < k; i++ {
			want.Mul(want, big.NewInt(int64(n)))
		}
		assert.Equal(rt, want.String(), got.String(), "%d^%d", n, k)
	})
}

func TestPermutationsWithRepetition(t *testing.T) {
	got, err := combinatorics.PermutationsWithRepetition(6, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "90", got.String())

	got, err = combinatorics.PermutationsWithRepetition(0)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	// MISSISSIPPI: 11! / (1! 4! 4! 2!)
	got, err = combinatorics.PermutationsWithRepetition(11, 1, 4, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "34650", got.String())
}

func TestPermutationsWithRepetition_Rejects(t *testing.T) {
	_, err := combinatorics.PermutationsWithRepetition(2, 2, 2, 2)
	requireInvalid(t, err, combinatorics.CodeGroupSum)

	_, err = combinatorics.PermutationsWithRepetition(1, 3, -2)
	requireInvalid(t, err, combinatorics.CodeNegativeGroup)

	_, err = combinatorics.PermutationsWithRepetition(-1)
	requireInvalid(t, err, combinatorics.CodeGroupSum)
}

func TestPermutationsWithRepetition_RejectsGroupsThatWrapTheSum(t *testing.T) {
	got, err := combinatorics.PermutationsWithRepetition(0, math.MaxInt, math.MaxInt, 2)
	assert.Nil(t, got)
	requireInvalid(t, err, combinatorics.CodeGroupSum)

	got, err = combinatorics.PermutationsWithRepetition(math.MaxInt, math.MaxInt, 1)
	assert.Nil(t, got)
	requireInvalid(t, err, combinatorics.CodeGroupSum)

	got, err = combinatorics.PermutationsWithRepetition(-2, math.MaxInt, math.MaxInt)
	assert.Nil(t, got)
	requireInvalid(t, err, combinatorics.CodeGroupSum)
}

func TestPermutationsWithRepetition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		groups := rapid.SliceOfN(rapid.IntRange(0, 8), 0, 6).Draw(rt, "groups")
		n := 0
		denominator := big.NewInt(1)
		for _, g := range groups {
			n += g
			denominator.Mul(denominator, factorial(rt, g))
		}

		got, err := combinatorics.PermutationsWithRepetition(n, groups...)
		require.NoError(rt, err)

		want := new(big.Int).Quo(factorial(rt, n), denominator)
		assert.Equal(rt, want.String(), got.String(), "multinomial of %v", groups)
	})
}

func TestPermutationsWithoutRepetition(t *testing.T) {
	got, err := combinatorics.PermutationsWithoutRepetition(2)
	require.NoError(t, err)
	assert.Equal(t, "2", got.String())

	got, err = combinatorics.PermutationsWithoutRepetition(0)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	_, err = combinatorics.PermutationsWithoutRepetition(-3)
	requireInvalid(t, err, combinatorics.CodeNegativeN)
}

func TestPermutationsWithoutRepetition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 100).Draw(rt, "n")
		got, err := combinatorics.PermutationsWithoutRepetition(n)
		require.NoError(rt, err)
		assert.Equal(rt, factorial(rt, n).String(), got.String())
	})
}

func TestCombinationsWithoutRepetition(t *testing.T) {
	got, err := combinatorics.CombinationsWithoutRepetition(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "10", got.String())

	got, err = combinatorics.CombinationsWithoutRepetition(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())
}

func TestCombinationsWithoutRepetition_Rejects(t *testing.T) {
	for _, tc := range []struct{ k, n int }{{6, 5}, {-1, 5}, {-1, -1}, {0, -1}} {
		got, err := combinatorics.CombinationsWithoutRepetition(tc.k, tc.n)
		assert.Nil(t, got)
		requireInvalid(t, err, combinatorics.CodeCombinationRange)
	}
}

func TestCombinationsWithoutRepetition_Symmetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")

		a, err := combinatorics.CombinationsWithoutRepetition(k, n)
		require.NoError(rt, err)
		b, err := combinatorics.CombinationsWithoutRepetition(n-k, n)
		require.NoError(rt, err)
		assert.Equal(rt, a.String(), b.String(), "C(%d,%d) must equal C(%d,%d)", k, n, n-k, n)
	})
}

func TestCombinationsWithoutRepetition_MatchesGonum(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")

		got, err := combinatorics.CombinationsWithoutRepetition(k, n)
		require.NoError(rt, err)
		assert.Equal(rt, int64(combin.Binomial(n, k)), got.Int64())
	})
}

func TestCombinationsWithRepetition(t *testing.T) {
	got, err := combinatorics.CombinationsWithRepetition(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "15", got.String())

	got, err = combinatorics.CombinationsWithRepetition(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	_, err = combinatorics.CombinationsWithRepetition(-1, 3)
	requireInvalid(t, err, combinatorics.CodeMultisetRange)

	_, err = combinatorics.CombinationsWithRepetition(2, 0)
	requireInvalid(t, err, combinatorics.CodeMultisetRange)
}

func TestCombinationsWithRepetition_BeyondIntRange(t *testing.T) {
	maxInt := big.NewInt(math.MaxInt)

	got, err := combinatorics.CombinationsWithRepetition(math.MaxInt, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	// C(MaxInt+1, 1)
	got, err = combinatorics.CombinationsWithRepetition(math.MaxInt, 2)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(maxInt, big.NewInt(1)).String(), got.String())

	// C(MaxInt+2, 2)
	got, err = combinatorics.CombinationsWithRepetition(math.MaxInt, 3)
	require.NoError(t, err)
	want := new(big.Int).Mul(new(big.Int).Add(maxInt, big.NewInt(2)), new(big.Int).Add(maxInt, big.NewInt(1)))
	want.Quo(want, big.NewInt(2))
	assert.Equal(t, want.String(), got.String())

	// k = 2 is the smaller side of C(MaxInt+1, 2).
	got, err = combinatorics.CombinationsWithRepetition(2, math.MaxInt)
	require.NoError(t, err)
	want = new(big.Int).Mul(new(big.Int).Add(maxInt, big.NewInt(1)), maxInt)
	want.Quo(want, big.NewInt(2))
	assert.Equal(t, want.String(), got.String())
}

func TestCombinationsWithRepetition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(0, 80).Draw(rt, "k")
		n := rapid.IntRange(1, 80).Draw(rt, "n")

		got, err := combinatorics.CombinationsWithRepetition(k, n)
		require.NoError(rt, err)
		want, err := combinatorics.CombinationsWithoutRepetition(k, n+k-1)
		require.NoError(rt, err)
		assert.Equal(rt, want.String(), got.String())
	})
}
