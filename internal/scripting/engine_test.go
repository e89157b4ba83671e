package scripting_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/scripting"
)

func newEngine(t testing.TB, limit int) *scripting.Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	ev := formula.NewEvaluator(formula.DefaultRegistry(), formula.Limits{}, logger)
	return scripting.NewEngine(ev, limit, logger)
}

func TestEngine_EvalFormulaByIDAndAlias(t *testing.T) {
	e := newEngine(t, 0)
	cases := []struct{ expr, want string }{
		{"combi.placements_without_repetition(2, 5)", "20"},
		{"combi.a(2, 5)", "20"},
		{"combi.ar(2, 5)", "25"},
		{"combi.pr(6, 2, 2, 2)", "90"},
		{"combi.pr_w_rep(6, {2, 2, 2})", "90"},
		{"combi.p(2)", "2"},
		{"combi.cm_wo_rep(2, 5)", "10"},
		{"combi.cr(2, 5)", "15"},
		{"combi.c(2, 5) + combi.cr(2, 5)", "25"},
	}
	for _, tc := range cases {
		expr, want := tc.expr, tc.want
		v, err := e.Eval(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, v.String(), expr)
	}
}

func TestEngine_EvalProbabilityKeepsExactValue(t *testing.T) {
	e := newEngine(t, 0)
	v, err := e.Eval("combi.all_marked(2, 5, 10)")
	require.NoError(t, err)
	assert.Equal(t, "2/9", v.String())

	v, err = e.Eval("combi.prob_r_marked(1, 2, 5, 10)")
	require.NoError(t, err)
	assert.Equal(t, "5/9", v.String())
}

func TestEngine_EvalPlainArithmetic(t *testing.T) {
	e := newEngine(t, 0)
	v, err := e.Eval("1 / 4")
	require.NoError(t, err)
	assert.Equal(t, "1/4", v.String())

	v, err = e.Eval("2 ^ 10")
	require.NoError(t, err)
	assert.Equal(t, "1024", v.String())
}

func TestEngine_EvalLargeIntegerStaysExact(t *testing.T) {
	e := newEngine(t, 0)
	v, err := e.Eval("combi.p(30)")
	require.NoError(t, err)
	assert.Equal(t, "265252859812191058636308480000000", v.String())
}

func TestEngine_EvalFormulaErrorIsPreserved(t *testing.T) {
	e := newEngine(t, 0)
	_, err := e.Eval("combi.a(6, 5)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, combinatorics.ErrInvalidArgument))

	var argErr *combinatorics.ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, combinatorics.CodeKExceedsN, argErr.Code)

	_, err = e.Eval("combi.c(1)")
	assert.True(t, errors.Is(err, formula.ErrArity))
}

func TestEngine_EvalRejectsNonInteger(t *testing.T) {
	e := newEngine(t, 0)
	_, err := e.Eval("combi.c(2.5, 5)")
	assert.True(t, errors.Is(err, scripting.ErrScript))

	_, err = e.Eval(`combi.c("two", 5)`)
	assert.True(t, errors.Is(err, scripting.ErrScript))
}

func TestEngine_EvalCaughtErrorDoesNotLeak(t *testing.T) {
	e := newEngine(t, 0)
	v, err := e.Eval("(function() local ok = pcall(combi.a, 6, 5); if ok then return 1 end; return combi.a(2, 5) end)()")
	require.NoError(t, err)
	assert.Equal(t, "20", v.String())
}

func TestEngine_EvalNoResult(t *testing.T) {
	e := newEngine(t, 0)
	_, err := e.Eval("nil")
	assert.True(t, errors.Is(err, scripting.ErrNoResult))

	_, err = e.Eval("{}")
	assert.True(t, errors.Is(err, scripting.ErrNoResult))

	_, err = e.Eval("   ")
	assert.True(t, errors.Is(err, formula.ErrEmptyInput))
}

func TestEngine_EvalSyntaxError(t *testing.T) {
	e := newEngine(t, 0)
	_, err := e.Eval("combi.c(2,")
	assert.True(t, errors.Is(err, scripting.ErrScript))
}

func TestEngine_InstructionLimit(t *testing.T) {
	e := newEngine(t, 50)
	_, err := e.Run("spin", "while true do end")
	assert.True(t, errors.Is(err, scripting.ErrInstructionLimit))
}

func TestEngine_SandboxHidesHost(t *testing.T) {
	e := newEngine(t, 0)
	_, err := e.Eval(`os.exit(1)`)
	assert.True(t, errors.Is(err, scripting.ErrScript))
}

func TestEngine_RunCapturesPrint(t *testing.T) {
	e := newEngine(t, 0)
	res, err := e.Run("table", `
		for n = 1, 3 do
			print(n, combi.p(n))
		end
	`)
	require.NoError(t, err)
	assert.True(t, res.Value.IsZero())
	assert.Equal(t, []string{"1\t1", "2\t2", "3\t6"}, res.Output)
}

func TestEngine_RunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lottery.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		local formulas = combi.formulas()
		print(#formulas)
		return combi.r_marked(3, 6, 6, 49)
	`), 0o644))

	e := newEngine(t, 0)
	res, err := e.RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, res.Output)
	assert.False(t, res.Value.IsInt())
	assert.InDelta(t, 0.01765, res.Value.Float64(), 1e-5)

	_, err = e.RunFile(filepath.Join(dir, "missing.lua"))
	assert.Error(t, err)
}

func TestEngine_LogWritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	ev := formula.NewEvaluator(formula.DefaultRegistry(), formula.Limits{}, logger)
	e := scripting.NewEngine(ev, 0, logger)

	_, err := e.Run("greet", `combi.log("hello")`)
	require.NoError(t, err)

	entries := logs.FilterMessage("script log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].ContextMap()["msg"])
	assert.Equal(t, "greet", entries[0].ContextMap()["script"])
}

func TestNewEngine_PanicsOnNilArguments(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ev := formula.NewEvaluator(formula.DefaultRegistry(), formula.Limits{}, logger)
	assert.Panics(t, func() { scripting.NewEngine(nil, 0, logger) })
	assert.Panics(t, func() { scripting.NewEngine(ev, 0, nil) })
}

func TestEngine_ConcurrentEval(t *testing.T) {
	e := newEngine(t, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := e.Eval("combi.c(2, 5)")
			assert.NoError(t, err)
			assert.Equal(t, "10", v.String())
		}()
	}
	wg.Wait()
}

func TestProperty_EvalMatchesEvaluator(t *testing.T) {
	e := newEngine(t, 0)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		want, err := combinatorics.CombinationsWithoutRepetition(k, n)
		require.NoError(rt, err)

		v, err := e.Eval(fmt.Sprintf("combi.c(%d, %d)", k, n))
		require.NoError(rt, err)
		assert.Equal(rt, want.String(), v.String())
	})
}
