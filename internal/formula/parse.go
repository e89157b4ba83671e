package formula

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Input validation errors. These belong to the caller side of the formula
// contract: the combinatorics functions only ever see parsed, bounded ints.
var (
	ErrNotInteger      = errors.New("not an integer")
	ErrOperandTooLarge = errors.New("operand too large")
)

// DefaultMaxOperand bounds the magnitude of any single argument.
const DefaultMaxOperand = 10_000

// Limits bounds formula inputs so factorial cost stays predictable.
type Limits struct {
	// MaxOperand is the largest accepted |argument|; 0 means DefaultMaxOperand.
	MaxOperand int
}

// Check validates every argument against the limits.
//
// Postcondition: Returns nil, or an error wrapping ErrOperandTooLarge.
func (l Limits) Check(args []int) error {
	limit := l.MaxOperand
	if limit <= 0 {
		limit = DefaultMaxOperand
	}
	for _, a := range args {
		if a > limit || a < -limit {
			return fmt.Errorf("%d exceeds the limit of %d: %w", a, limit, ErrOperandTooLarge)
		}
	}
	return nil
}

// Line is a formula invocation split out of one line of text.
type Line struct {
	// Name is the first word, lowercased.
	Name string
	// Fields are the remaining whitespace-separated words.
	Fields []string
}

// ParseLine splits "c 2 5" into a formula name and argument fields.
//
// Postcondition: If line is blank, Name is empty.
func ParseLine(line string) Line {
	words := strings.Fields(line)
	if len(words) == 0 {
		return Line{}
	}
	return Line{Name: strings.ToLower(words[0]), Fields: words[1:]}
}

// ParseArgs converts text fields into integer arguments.
// Fields may also carry comma-separated lists ("2,2,2" or "2, 2, 2"), which
// is how group sizes are usually typed.
//
// Postcondition: Returns the arguments, or an error wrapping ErrNotInteger.
func ParseArgs(fields []string) ([]int, error) {
	var args []int
	for _, field := range fields {
		for _, part := range strings.Split(field, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", part, ErrNotInteger)
			}
			args = append(args, v)
		}
	}
	return args, nil
}
