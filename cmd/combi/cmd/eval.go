package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/scripting"
)

func newEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <lua expression>",
		Short: "Evaluate a Lua expression, e.g. eval 'combi.c(2, 5) * 2'",
		Long: `eval evaluates one Lua expression in a sandbox. Every formula is
available in the combi table by id and alias, e.g. combi.c(2, 5) or
combi.pr(6, {2, 2, 2}).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.engine().Eval(strings.Join(args, " "))
			return a.reportScript(cmd, v, err)
		},
	}
}

func newScriptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "script <file.lua>",
		Short: "Run a Lua script against the formula catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.engine().RunFile(args[0])
			st := newStyles(cmd.OutOrStdout())
			for _, line := range res.Output {
				fmt.Fprintln(cmd.OutOrStdout(), st.Output.Render(line))
			}
			if err == nil && res.Value.IsZero() {
				return nil
			}
			return a.reportScript(cmd, res.Value, err)
		},
	}
}

func (a *app) engine() *scripting.Engine {
	return scripting.NewEngine(a.evaluator, a.cfg.Scripting.InstructionLimit, a.logger)
}

// reportScript reports formula errors by their localized message and script
// failures with the script error appended.
func (a *app) reportScript(cmd *cobra.Command, v formula.Value, err error) error {
	if err != nil && isScriptFailure(err) {
		return a.fail(cmd, a.loc.Text("error.script")+" "+err.Error(), err)
	}
	return a.report(cmd, v, err)
}

func isScriptFailure(err error) bool {
	return errors.Is(err, scripting.ErrScript) ||
		errors.Is(err, scripting.ErrInstructionLimit) ||
		errors.Is(err, scripting.ErrNoResult)
}
