package scripting

import (
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combicalc/internal/formula"
)

// install registers the combi table and replaces print so output is captured.
//
// Postcondition: combi.<id> and combi.<alias> exist for every registered
// formula; combi.formulas() lists the IDs; combi.log(msg) writes to the logger.
func (r *run) install(L *lua.LState) {
	combi := L.NewTable()
	for _, f := range r.engine.evaluator.Registry().Formulas() {
		fn := L.NewFunction(r.formulaFunc(f))
		L.SetField(combi, f.ID, fn)
		for _, alias := range f.Aliases {
			L.SetField(combi, alias, fn)
		}
	}
	L.SetField(combi, "formulas", L.NewFunction(r.formulas))
	L.SetField(combi, "log", L.NewFunction(r.log))
	L.SetGlobal("combi", combi)
	L.SetGlobal("print", L.NewFunction(r.print))
}

func (r *run) formulaFunc(f *formula.Formula) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]int, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = appendInts(L, i, L.Get(i), args)
		}
		res, err := r.engine.evaluator.Apply(f, args...)
		if err != nil {
			r.lastErr = err
			L.RaiseError("%s", err.Error())
			return 0
		}
		pushed := push(res.Value)
		r.lastValue = res.Value
		r.lastPushed = pushed
		L.Push(pushed)
		return 1
	}
}

// appendInts accepts integers and flat tables of integers, so group sizes may
// be passed either as combi.pr(6, 2, 2, 2) or combi.pr(6, {2, 2, 2}).
func appendInts(L *lua.LState, pos int, v lua.LValue, out []int) []int {
	switch lv := v.(type) {
	case lua.LNumber:
		f := float64(lv)
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			L.ArgError(pos, "integer expected")
		}
		return append(out, int(f))
	case *lua.LTable:
		lv.ForEach(func(_, item lua.LValue) {
			n, ok := item.(lua.LNumber)
			if !ok || float64(n) != math.Trunc(float64(n)) || math.Abs(float64(n)) > math.MaxInt32 {
				L.ArgError(pos, "table of integers expected")
			}
			out = append(out, int(n))
		})
		return out
	}
	L.ArgError(pos, "integer expected, got "+v.Type().String())
	return out
}

func (r *run) formulas(L *lua.LState) int {
	t := L.NewTable()
	for _, f := range r.engine.evaluator.Registry().Formulas() {
		t.Append(lua.LString(f.ID))
	}
	L.Push(t)
	return 1
}

func (r *run) log(L *lua.LState) int {
	r.engine.logger.Info("script log",
		zap.String("script", r.name),
		zap.String("msg", L.CheckString(1)),
	)
	return 0
}

func (r *run) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	r.output = append(r.output, strings.Join(parts, "\t"))
	return 0
}
