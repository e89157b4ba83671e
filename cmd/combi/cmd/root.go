// Package cmd implements the combi command tree.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combicalc/internal/config"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/i18n"
	"github.com/cory-johannsen/combicalc/internal/observability"
)

// ErrCalculationFailed is returned after a failed calculation has already
// been reported to the user.
var ErrCalculationFailed = errors.New("calculation failed")

// app holds the flags and the state built from them before a subcommand runs.
type app struct {
	cfgFile string
	locale  string
	verbose bool

	cfg       config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	loc       *i18n.Localizer
	evaluator *formula.Evaluator
}

// Execute runs the command line and reports errors that were not already
// printed.
func Execute() error {
	root := newRootCmd(nil)
	err := root.Execute()
	if err != nil && !errors.Is(err, ErrCalculationFailed) {
		fmt.Fprintln(os.Stderr, newStyles(os.Stderr).Error.Render("Error: "+err.Error()))
	}
	return err
}

// newRootCmd builds the command tree. A nil logger is built from the loaded
// configuration.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:   "combi",
		Short: "Combinatorics calculator",
		Long: `combi computes permutations, placements and combinations, with and
without repetition, and urn-model probabilities. Results are exact.

Families:
  permutations  - orderings of n elements
  placements    - ordered selections of k from n
  combinations  - unordered selections of k from n
  probability   - drawing marked elements from an urn`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: defaults and COMBI_* environment)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "message language, e.g. en-US or ru-RU (default: calculator.locale)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newFamilyCmd(a, formula.FamilyPermutations, "permutations [--repetition] n [groups...]",
			"Permutations of n elements, optionally split into groups of identical elements"),
		newFamilyCmd(a, formula.FamilyPlacements, "placements [--repetition] k n",
			"Ordered selections of k elements from n"),
		newFamilyCmd(a, formula.FamilyCombinations, "combinations [--repetition] k n",
			"Unordered selections of k elements from n"),
		newProbabilityCmd(a),
		newCalcCmd(a),
		newFormulasCmd(a),
		newEvalCmd(a),
		newScriptCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger, catalog and evaluator.
func (a *app) setup() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := observability.NewCLILogger(cfg.Logging, a.verbose)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		a.logger = logger
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("loading message catalogs: %w", err)
	}
	a.bundle = bundle

	locale := cfg.Calculator.Locale
	if a.locale != "" {
		matched, ok := bundle.Match(a.locale)
		if !ok {
			return fmt.Errorf("unknown locale %q (available: %v)", a.locale, bundle.Locales())
		}
		locale = matched
	}
	a.loc = bundle.Localizer(locale, cfg.Calculator.Precision)

	a.evaluator = formula.NewEvaluator(
		formula.DefaultRegistry(),
		formula.Limits{MaxOperand: cfg.Calculator.MaxOperand},
		a.logger,
	)
	a.logger.Debug("combi initialized",
		zap.String("config", a.cfgFile),
		zap.String("locale", a.loc.Locale()),
		zap.Int("max_operand", cfg.Calculator.MaxOperand),
	)
	return nil
}

// report prints the result line, or the error line and ErrCalculationFailed.
func (a *app) report(cmd *cobra.Command, v formula.Value, err error) error {
	if err != nil {
		return a.fail(cmd, a.loc.ErrorMessage(err), err)
	}
	st := newStyles(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), st.Result.Render(a.loc.Result(v)))
	return nil
}

// fail prints msg as the localized error line.
func (a *app) fail(cmd *cobra.Command, msg string, err error) error {
	a.logger.Debug("calculation failed", zap.String("command", cmd.Name()), zap.Error(err))
	st := newStyles(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), st.Error.Render(a.loc.Text("label.error", msg)))
	return fmt.Errorf("%w: %w", ErrCalculationFailed, err)
}
