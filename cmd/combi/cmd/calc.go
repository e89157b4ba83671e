package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/rpcserver"
)

// newFamilyCmd builds a command that picks the with- or without-repetition
// variant of family, like the calculator's tab switch.
func newFamilyCmd(a *app, family formula.Family, use, short string) *cobra.Command {
	var repetition bool
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := a.evaluator.Registry().Variant(family, repetition)
			if !ok {
				return fmt.Errorf("no %s formula with repetition=%t", family, repetition)
			}
			return a.apply(cmd, f, args)
		},
	}
	c.Flags().BoolVarP(&repetition, "repetition", "r", false, "use the with-repetition formula")
	return c
}

func newProbabilityCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "probability",
		Short: "Urn-model probabilities",
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "all-marked k m n",
			Short: "Probability that all k drawn elements are marked",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.applyNamed(cmd, "prob_all_marked", args)
			},
		},
		&cobra.Command{
			Use:   "r-marked r k m n",
			Short: "Probability that exactly r of k drawn elements are marked",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.applyNamed(cmd, "prob_r_marked", args)
			},
		},
	)
	return c
}

func newCalcCmd(a *app) *cobra.Command {
	var (
		serverAddr string
		timeout    time.Duration
	)
	c := &cobra.Command{
		Use:   "calc <formula> [args...]",
		Short: "Evaluate any formula by id or alias, e.g. calc pr 6 2,2,2",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverAddr != "" {
				return a.calcRemote(cmd, serverAddr, timeout, args)
			}
			return a.applyNamed(cmd, args[0], args[1:])
		},
	}
	c.Flags().StringVar(&serverAddr, "server", "", "evaluate on a calculator gRPC server at host:port")
	c.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "gRPC call timeout")
	return c
}

func (a *app) applyNamed(cmd *cobra.Command, name string, fields []string) error {
	f, err := a.evaluator.Registry().Resolve(name)
	if err != nil {
		return a.report(cmd, formula.Value{}, err)
	}
	return a.apply(cmd, f, fields)
}

func (a *app) apply(cmd *cobra.Command, f *formula.Formula, fields []string) error {
	args, err := formula.ParseArgs(fields)
	if err != nil {
		return a.report(cmd, formula.Value{}, err)
	}
	res, err := a.evaluator.Apply(f, args...)
	return a.report(cmd, res.Value, err)
}

// calcRemote sends the calculation to a calculator server. The server
// formats the value and error text in this command's locale.
func (a *app) calcRemote(cmd *cobra.Command, addr string, timeout time.Duration, fields []string) error {
	args, err := formula.ParseArgs(fields[1:])
	if err != nil {
		return a.report(cmd, formula.Value{}, err)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ev, err := rpcserver.NewClient(conn, a.loc.Locale()).Evaluate(ctx, fields[0], args...)
	if err != nil {
		msg, ok := rpcserver.LocalizedMessage(err)
		if !ok {
			return fmt.Errorf("calling %s: %w", addr, err)
		}
		return a.fail(cmd, msg, err)
	}
	st := newStyles(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), st.Result.Render(a.loc.Text("label.result", ev.Display)))
	return nil
}

func newFormulasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formulas [family]",
		Short: "List the formula catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			families := formula.Families()
			if len(args) == 1 {
				family, ok := formula.ParseFamily(strings.ToLower(args[0]))
				if !ok {
					return a.fail(cmd, a.loc.Text("error.unknown_family"), fmt.Errorf("family %q", args[0]))
				}
				families = []formula.Family{family}
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			for _, family := range families {
				fmt.Fprintln(out, st.Title.Render(a.loc.FamilyTitle(family)))
				for _, f := range a.evaluator.Registry().Family(family) {
					fmt.Fprintln(out, st.Formula.Render(a.loc.FormulaTitle(f)))
					fmt.Fprintln(out, st.Muted.Render(a.loc.Text("label.notation", f.Notation)))
					fmt.Fprintln(out, st.Muted.Render(a.loc.Text("label.usage", f.Usage())))
					fmt.Fprintln(out, st.Muted.Render(a.loc.Text("label.aliases", strings.Join(f.Aliases, ", "))))
				}
			}
			return nil
		},
	}
}
