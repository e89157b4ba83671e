package formula

import (
	"errors"

	"go.uber.org/zap"
)

// ErrEmptyInput is returned by EvaluateLine for a blank line.
var ErrEmptyInput = errors.New("empty input")

// Result is one completed evaluation.
type Result struct {
	Formula *Formula
	Args    []int
	Value   Value
}

// Evaluator resolves, validates and evaluates formulas, logging each call.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	registry *Registry
	limits   Limits
	logger   *zap.Logger
}

// NewEvaluator creates an Evaluator over registry.
//
// Precondition: registry and logger must be non-nil.
func NewEvaluator(registry *Registry, limits Limits, logger *zap.Logger) *Evaluator {
	return &Evaluator{registry: registry, limits: limits, logger: logger}
}

// Registry returns the formula registry backing e.
func (e *Evaluator) Registry() *Registry { return e.registry }

// Evaluate resolves name and computes it with args.
//
// Postcondition: Returns a Result, or an error wrapping ErrUnknownFormula,
// ErrOperandTooLarge, ErrArity or combinatorics.ErrInvalidArgument.
func (e *Evaluator) Evaluate(name string, args ...int) (Result, error) {
	f, err := e.registry.Resolve(name)
	if err != nil {
		e.logger.Debug("formula rejected", zap.String("name", name), zap.Error(err))
		return Result{}, err
	}
	return e.Apply(f, args...)
}

// Apply computes f with args after checking the operand limits.
//
// Precondition: f must be non-nil.
func (e *Evaluator) Apply(f *Formula, args ...int) (Result, error) {
	if err := e.limits.Check(args); err != nil {
		e.logger.Debug("formula rejected",
			zap.String("formula", f.ID),
			zap.Ints("args", args),
			zap.Error(err),
		)
		return Result{}, err
	}
	v, err := f.Eval(args...)
	if err != nil {
		e.logger.Debug("formula rejected",
			zap.String("formula", f.ID),
			zap.Ints("args", args),
			zap.Error(err),
		)
		return Result{}, err
	}
	e.logger.Debug("formula evaluated",
		zap.String("formula", f.ID),
		zap.Ints("args", args),
		zap.Stringer("value", v),
	)
	return Result{Formula: f, Args: args, Value: v}, nil
}

// EvaluateLine parses and evaluates a line such as "pr 6 2,2,2".
//
// Postcondition: Returns a Result, or an error wrapping ErrEmptyInput,
// ErrNotInteger or any error of Evaluate.
func (e *Evaluator) EvaluateLine(line string) (Result, error) {
	parsed := ParseLine(line)
	if parsed.Name == "" {
		return Result{}, ErrEmptyInput
	}
	f, err := e.registry.Resolve(parsed.Name)
	if err != nil {
		return Result{}, err
	}
	args, err := ParseArgs(parsed.Fields)
	if err != nil {
		return Result{}, err
	}
	return e.Apply(f, args...)
}
