package combinatorics

import "errors"

// ErrInvalidArgument is the single failure kind of this package. Every error
// returned by a formula function wraps it.
var ErrInvalidArgument = errors.New("invalid argument")

// Stable identifiers for violated preconditions. Presentation layers key
// localized messages on these.
const (
	CodeNegativeN        = "negative_n"
	CodeNegativeK        = "negative_k"
	CodeKExceedsN        = "k_exceeds_n"
	CodeNegativeGroup    = "negative_group"
	CodeGroupSum         = "group_sum"
	CodeCombinationRange = "combination_range"
	CodeMultisetRange    = "multiset_range"
	CodeAllMarkedRange   = "all_marked_range"
	CodeRMarkedRange     = "r_marked_range"
	CodeDrawRange        = "draw_range"
)

var messages = map[string]string{
	CodeNegativeN:        "n must be ≥ 0",
	CodeNegativeK:        "k must be ≥ 0",
	CodeKExceedsN:        "k must be ≤ n",
	CodeNegativeGroup:    "groups must be non-negative",
	CodeGroupSum:         "sum of groups must equal n",
	CodeCombinationRange: "require 0 ≤ k ≤ n",
	CodeMultisetRange:    "require k ≥ 0 and n ≥ 1",
	CodeAllMarkedRange:   "require k < m ≤ n",
	CodeRMarkedRange:     "require k ≤ m, k − r ≤ n − m, m ≤ n",
	CodeDrawRange:        "require 0 ≤ r ≤ k",
}

// ArgumentError reports a violated numeric precondition.
//
// Invariant: errors.Is(err, ErrInvalidArgument) holds for every *ArgumentError.
type ArgumentError struct {
	Op   string // function that rejected the input
	Code string // one of the Code* constants
	Msg  string // static English description of the constraint
}

func (e *ArgumentError) Error() string {
	return "combinatorics: " + e.Op + ": " + e.Msg
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func invalid(op, code string) error {
	return &ArgumentError{Op: op, Code: code, Msg: messages[code]}
}

// Message returns the English text for code, or "" for an unknown code.
func Message(code string) string {
	return messages[code]
}
