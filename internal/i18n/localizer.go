package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
	"github.com/cory-johannsen/combicalc/internal/formula"
)

// DefaultPrecision is the number of decimals shown for probabilities.
const DefaultPrecision = 4

// Localizer renders text for one locale. It is immutable and safe for
// concurrent use.
type Localizer struct {
	locale    string
	tag       language.Tag
	printer   *message.Printer
	precision int
}

// Localizer returns a Localizer for the closest match to locale, falling back
// to BaseLocale. A negative precision selects DefaultPrecision.
func (b *Bundle) Localizer(locale string, precision int) *Localizer {
	resolved, _ := b.Match(locale)
	tag := language.MustParse(resolved)
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Localizer{
		locale:    resolved,
		tag:       tag,
		printer:   message.NewPrinter(tag, message.Catalog(b.catalog)),
		precision: precision,
	}
}

// Locale returns the resolved locale identifier.
func (l *Localizer) Locale() string { return l.locale }

// Text formats the catalog message for key with args.
// An unknown key is rendered as the key itself.
func (l *Localizer) Text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Decimal renders f with the locale's decimal separator and the configured
// number of fraction digits.
func (l *Localizer) Decimal(f float64) string {
	return l.printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(l.precision),
		number.MaxFractionDigits(l.precision),
	))
}

// Value renders a formula result. Integers print in full without grouping;
// probabilities print as the exact fraction followed by a rounded decimal.
func (l *Localizer) Value(v formula.Value) string {
	if v.IsZero() {
		return ""
	}
	if v.IsInt() {
		return v.String()
	}
	return v.String() + " ≈ " + l.Decimal(v.Float64())
}

// Result renders the "Result: <value>" line.
func (l *Localizer) Result(v formula.Value) string {
	return l.Text("label.result", l.Value(v))
}

// Error renders the "Error: <message>" line for err.
func (l *Localizer) Error(err error) string {
	return l.Text("label.error", l.ErrorMessage(err))
}

// ErrorMessage maps err to its localized message. Errors outside the
// calculator's vocabulary render as err.Error().
func (l *Localizer) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if key, ok := ErrorKey(err); ok {
		return l.Text(key)
	}
	return err.Error()
}

// ErrorKey returns the catalog key describing err.
//
// Postcondition: ok is false when err carries no known code or sentinel.
func ErrorKey(err error) (key string, ok bool) {
	var argErr *combinatorics.ArgumentError
	switch {
	case errors.As(err, &argErr):
		return "error." + argErr.Code, true
	case errors.Is(err, combinatorics.ErrInvalidArgument):
		return "error.invalid_argument", true
	case errors.Is(err, formula.ErrUnknownFormula):
		return "error.unknown_formula", true
	case errors.Is(err, formula.ErrArity):
		return "error.arity", true
	case errors.Is(err, formula.ErrNotInteger):
		return "error.not_integer", true
	case errors.Is(err, formula.ErrOperandTooLarge):
		return "error.operand_too_large", true
	case errors.Is(err, formula.ErrEmptyInput):
		return "error.empty_input", true
	}
	return "", false
}

// FamilyTitle returns the tab title for a formula family.
func (l *Localizer) FamilyTitle(f formula.Family) string {
	return l.Text("family." + string(f))
}

// FormulaTitle returns the section title for f: the urn model name for
// probabilities, the repetition variant otherwise.
func (l *Localizer) FormulaTitle(f *formula.Formula) string {
	if f.Family == formula.FamilyProbability {
		return l.Text("formula." + f.ID)
	}
	variant := "variant.without_repetition"
	if f.Repetition {
		variant = "variant.with_repetition"
	}
	return l.FamilyTitle(f.Family) + ". " + l.Text(variant)
}

// FieldLabel returns the prompt for one formula parameter.
func (l *Localizer) FieldLabel(p formula.Param) string {
	name := p.Name
	if p.Variadic {
		name = l.Text("label.groups")
	}
	return l.Text("label.field", name)
}

// JoinFamilies lists every family title for the help screen.
func (l *Localizer) JoinFamilies() string {
	titles := make([]string, 0, len(formula.Families()))
	for _, f := range formula.Families() {
		titles = append(titles, string(f)+" ("+l.FamilyTitle(f)+")")
	}
	return l.Text("help.tabs", strings.Join(titles, ", "))
}
