package scripting

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combicalc/internal/formula"
)

// Script failures. Formula failures are returned as the formula's own error
// instead, so errors.Is(err, combinatorics.ErrInvalidArgument) keeps working.
var (
	ErrScript           = errors.New("script error")
	ErrInstructionLimit = errors.New("instruction limit exceeded")
	ErrNoResult         = errors.New("script produced no numeric result")
)

// maxExactFloat is the largest integer a Lua number holds without rounding.
const maxExactFloat = 1 << 53

// Result is the outcome of running a script.
type Result struct {
	// Value is the chunk's first return value; zero if it returned nothing.
	Value formula.Value
	// Output holds the lines written with print.
	Output []string
}

// Engine evaluates Lua against the formula catalog. Every call runs in a
// fresh sandbox, so an Engine is safe for concurrent use.
type Engine struct {
	evaluator *formula.Evaluator
	instLimit int
	logger    *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: evaluator and logger must be non-nil; instLimit >= 0.
func NewEngine(evaluator *formula.Evaluator, instLimit int, logger *zap.Logger) *Engine {
	if evaluator == nil {
		panic("scripting.NewEngine: evaluator must not be nil")
	}
	if logger == nil {
		panic("scripting.NewEngine: logger must not be nil")
	}
	return &Engine{evaluator: evaluator, instLimit: instLimit, logger: logger}
}

// Eval evaluates a single Lua expression such as "combi.c(2, 5) * 2".
//
// Postcondition: Returns a non-zero Value, or an error.
func (e *Engine) Eval(expr string) (formula.Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return formula.Value{}, formula.ErrEmptyInput
	}
	res, err := e.Run("eval", "return "+expr)
	if err != nil {
		return formula.Value{}, err
	}
	if res.Value.IsZero() {
		return formula.Value{}, ErrNoResult
	}
	return res.Value, nil
}

// RunFile runs the Lua file at path.
func (e *Engine) RunFile(path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	return e.Run(filepath.Base(path), string(src))
}

// Run executes src as a chunk named name.
//
// Postcondition: On failure the error wraps the formula error that aborted the
// script, ErrInstructionLimit, or ErrScript.
func (e *Engine) Run(name, src string) (Result, error) {
	L, cancel := NewSandboxedState(e.instLimit)
	defer L.Close()
	defer cancel()

	r := &run{engine: e, name: name}
	r.install(L)

	fn, err := L.LoadString(src)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return Result{Output: r.output}, r.failure(L, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	v, err := r.toValue(ret)
	if err != nil {
		return Result{Output: r.output}, err
	}
	e.logger.Debug("script evaluated",
		zap.String("script", name),
		zap.Stringer("value", v),
	)
	return Result{Value: v, Output: r.output}, nil
}

// run is the per-execution state shared by the combi functions.
type run struct {
	engine *Engine
	name   string
	output []string

	// lastErr is the most recent formula error raised into Lua.
	lastErr error
	// lastValue and lastPushed let an unmodified formula result keep its
	// exact form when it is returned from the script.
	lastValue  formula.Value
	lastPushed lua.LValue
}

func (r *run) failure(L *lua.LState, err error) error {
	if limitExceeded(L) {
		r.engine.logger.Debug("script stopped",
			zap.String("script", r.name),
			zap.Int("limit", r.engine.instLimit),
		)
		return fmt.Errorf("%s: %w", r.name, ErrInstructionLimit)
	}
	if r.lastErr != nil && strings.Contains(err.Error(), r.lastErr.Error()) {
		return r.lastErr
	}
	r.engine.logger.Debug("script failed", zap.String("script", r.name), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrScript, err)
}

// toValue converts a returned Lua value into a formula.Value.
func (r *run) toValue(v lua.LValue) (formula.Value, error) {
	if r.lastPushed != nil && v == r.lastPushed {
		return r.lastValue, nil
	}
	switch lv := v.(type) {
	case *lua.LNilType:
		return formula.Value{}, nil
	case lua.LNumber:
		return numberValue(float64(lv))
	case lua.LString:
		i, ok := new(big.Int).SetString(strings.TrimSpace(string(lv)), 10)
		if !ok {
			return formula.Value{}, fmt.Errorf("%w: %q is not a number", ErrNoResult, string(lv))
		}
		return formula.IntValue(i), nil
	}
	return formula.Value{}, fmt.Errorf("%w: got %s", ErrNoResult, v.Type().String())
}

func numberValue(f float64) (formula.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formula.Value{}, fmt.Errorf("%w: %v", ErrNoResult, f)
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxExactFloat {
		return formula.IntValue(big.NewInt(int64(f))), nil
	}
	rat, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return formula.Value{}, fmt.Errorf("%w: %v", ErrNoResult, f)
	}
	return formula.RatValue(rat), nil
}

// push converts a formula result into the closest Lua value. Integers beyond
// float precision travel as decimal strings.
func push(v formula.Value) lua.LValue {
	if v.IsInt() {
		i := v.Int()
		if i.IsInt64() && i.Int64() <= maxExactFloat && i.Int64() >= -maxExactFloat {
			return lua.LNumber(float64(i.Int64()))
		}
		return lua.LString(i.String())
	}
	return lua.LNumber(v.Float64())
}
