package handlers

import (
	"strings"

	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/frontend/telnet"
	"github.com/cory-johannsen/combicalc/internal/i18n"
)

// renderTab formats one calculator tab: its title followed by every formula
// in the family.
func renderTab(loc *i18n.Localizer, family formula.Family, formulas []*formula.Formula) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(loc.FamilyTitle(family), telnet.Bold, telnet.Yellow))
	for _, f := range formulas {
		b.WriteString("\n")
		b.WriteString(renderFormula(loc, f))
	}
	return b.String()
}

// renderFormula formats one section: title, notation, usage and aliases.
func renderFormula(loc *i18n.Localizer, f *formula.Formula) string {
	lines := []string{
		"  " + telnet.Colorize(loc.FormulaTitle(f), telnet.Cyan),
		"    " + loc.Text("label.notation", f.Notation),
		"    " + telnet.Colorize(loc.Text("label.usage", f.Usage()), telnet.Dim),
		"    " + telnet.Colorize(loc.Text("label.aliases", strings.Join(f.Aliases, ", ")), telnet.Dim),
	}
	return strings.Join(lines, "\n")
}
