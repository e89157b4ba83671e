package formula

import (
	"math/big"
)

// Value is the exact result of a formula evaluation.
//
// Invariant: a Value is never mutated after construction; accessors return
// copies.
type Value struct {
	num      *big.Rat
	integral bool
}

// IntValue wraps an exact integer count.
//
// Precondition: i must be non-nil.
func IntValue(i *big.Int) Value {
	return Value{num: new(big.Rat).SetInt(i), integral: true}
}

// RatValue wraps an exact ratio such as a probability.
//
// Precondition: r must be non-nil.
func RatValue(r *big.Rat) Value {
	return Value{num: new(big.Rat).Set(r), integral: r.IsInt()}
}

// IsZero reports whether v is the zero Value (no result).
func (v Value) IsZero() bool { return v.num == nil }

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.num != nil && v.integral }

// Int returns the integer held by v, or nil if v is not integral.
func (v Value) Int() *big.Int {
	if !v.IsInt() {
		return nil
	}
	return new(big.Int).Set(v.num.Num())
}

// Rat returns v as an exact ratio.
func (v Value) Rat() *big.Rat {
	if v.num == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(v.num)
}

// Float64 returns the nearest float64 to v.
func (v Value) Float64() float64 {
	if v.num == nil {
		return 0
	}
	f, _ := v.num.Float64()
	return f
}

// String renders integers in decimal and ratios in lowest terms, e.g. "2/9".
func (v Value) String() string {
	switch {
	case v.num == nil:
		return ""
	case v.integral:
		return v.num.Num().String()
	default:
		return v.num.String()
	}
}
