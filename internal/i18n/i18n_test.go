package i18n_test

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/i18n"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadEmbedded_HasExpectedLocales(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US", "ru-RU"}, b.Locales())
	assert.True(t, b.HasLocale("ru-RU"))
	assert.False(t, b.HasLocale("de-DE"))
}

func TestLoadEmbedded_EveryLocaleHasEveryBaseKey(t *testing.T) {
	dir := filepath.Join("locales", i18n.BaseLocale)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	b := i18n.MustLoadEmbedded()
	for _, locale := range b.Locales() {
		for _, key := range []string{"app.title", "label.result", "error.k_exceeds_n", "formula.prob_r_marked"} {
			_, ok := b.Message(locale, key)
			assert.True(t, ok, "%s missing %s", locale, key)
		}
	}
}

func TestLoadEmbedded_ErrorKeyForEveryCode(t *testing.T) {
	b := i18n.MustLoadEmbedded()
	codes := []string{
		combinatorics.CodeNegativeN,
		combinatorics.CodeNegativeK,
		combinatorics.CodeKExceedsN,
		combinatorics.CodeNegativeGroup,
		combinatorics.CodeGroupSum,
		combinatorics.CodeCombinationRange,
		combinatorics.CodeMultisetRange,
		combinatorics.CodeAllMarkedRange,
		combinatorics.CodeRMarkedRange,
		combinatorics.CodeDrawRange,
	}
	for _, locale := range b.Locales() {
		for _, code := range codes {
			_, ok := b.Message(locale, "error."+code)
			assert.True(t, ok, "%s has no message for %s", locale, code)
		}
	}
}

func TestLoadFromFS_RequiresBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/ru-RU/ui.yaml"), "locale: ru-RU\nnamespace: ui\nmessages:\n  a: b\n")
	_, err := i18n.LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func TestLoadFromFS_RejectsMismatchedLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/ui.yaml"), "locale: en-GB\nnamespace: ui\nmessages:\n  a: b\n")
	_, err := i18n.LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func TestLoadFromFS_RejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/ui.yaml"), "locale: en-US\nnamespace: ui\nmessages:\n  a.key: a\n")
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/errors.yaml"), "locale: en-US\nnamespace: errors\nmessages:\n  a.key: b\n")
	_, err := i18n.LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func TestLoadFromFS_FillsMissingKeysFromBase(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/ui.yaml"), "locale: en-US\nnamespace: ui\nmessages:\n  greet: hello\n  bye: goodbye\n")
	mustWriteFile(t, filepath.Join(dir, "locales/ru-RU/ui.yaml"), "locale: ru-RU\nnamespace: ui\nmessages:\n  greet: привет\n")
	b, err := i18n.LoadFromFS(os.DirFS(dir))
	require.NoError(t, err)

	l := b.Localizer("ru-RU", -1)
	assert.Equal(t, "привет", l.Text("greet"))
	assert.Equal(t, "goodbye", l.Text("bye"))
}

func TestLoadFromFS_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/ui.yaml"), "locale: [en-US\n")
	_, err := i18n.LoadFromFS(os.DirFS(dir))
	assert.Error(t, err)
}

func TestBundle_Match(t *testing.T) {
	b := i18n.MustLoadEmbedded()
	for requested, want := range map[string]string{
		"ru-RU": "ru-RU",
		"ru":    "ru-RU",
		"en-US": "en-US",
		"en":    "en-US",
	} {
		got, ok := b.Match(requested)
		assert.True(t, ok, requested)
		assert.Equal(t, want, got, requested)
	}

	got, ok := b.Match("not a language")
	assert.False(t, ok)
	assert.Equal(t, i18n.BaseLocale, got)
}

func TestLocalizer_Labels(t *testing.T) {
	b := i18n.MustLoadEmbedded()
	ru := b.Localizer("ru-RU", 4)
	en := b.Localizer("en-US", 4)

	assert.Equal(t, "ru-RU", ru.Locale())
	assert.Equal(t, "Комбинаторный Калькулятор", ru.Text("app.title"))
	assert.Equal(t, "Перестановки", ru.FamilyTitle(formula.FamilyPermutations))
	assert.Equal(t, "Вычислить", ru.Text("action.calculate"))
	assert.Equal(t, "Combinatorial Calculator", en.Text("app.title"))
	assert.Equal(t, "missing.key", en.Text("missing.key"))
}

func TestLocalizer_FormulaTitle(t *testing.T) {
	reg := formula.DefaultRegistry()
	ru := i18n.MustLoadEmbedded().Localizer("ru", 4)

	f, err := reg.Resolve("cr")
	require.NoError(t, err)
	assert.Equal(t, "Сочетания. С повторениями", ru.FormulaTitle(f))

	f, err = reg.Resolve("r_marked")
	require.NoError(t, err)
	assert.Equal(t, "Урновая модель, где R меченных", ru.FormulaTitle(f))
}

func TestLocalizer_FieldLabel(t *testing.T) {
	en := i18n.MustLoadEmbedded().Localizer("en-US", 4)
	assert.Equal(t, "k: ", en.FieldLabel(formula.Param{Name: "k"}))
	assert.Equal(t, "n1, n2, ..., nk: ", en.FieldLabel(formula.Param{Name: "groups", Variadic: true}))
}

func TestLocalizer_ResultAndValue(t *testing.T) {
	b := i18n.MustLoadEmbedded()
	en := b.Localizer("en-US", 4)
	ru := b.Localizer("ru-RU", 4)

	assert.Equal(t, "Result: 90", en.Result(formula.IntValue(big.NewInt(90))))
	assert.Equal(t, "Результат: 90", ru.Result(formula.IntValue(big.NewInt(90))))

	p := formula.RatValue(big.NewRat(2, 9))
	assert.Equal(t, "2/9 ≈ 0.2222", en.Value(p))
	assert.Equal(t, "0,2222", ru.Decimal(p.Float64()))
	assert.Equal(t, "", en.Value(formula.Value{}))
}

func TestLocalizer_DefaultPrecision(t *testing.T) {
	en := i18n.MustLoadEmbedded().Localizer("en-US", -1)
	assert.Equal(t, "0.5000", en.Decimal(0.5))
}

func TestLocalizer_ErrorMessages(t *testing.T) {
	b := i18n.MustLoadEmbedded()
	ru := b.Localizer("ru-RU", 4)
	en := b.Localizer("en-US", 4)

	_, err := combinatorics.PlacementsWithoutRepetition(6, 5)
	require.Error(t, err)
	assert.Equal(t, "Ошибка: Некорректные данные. Требуется: k <= n", ru.Error(err))
	assert.Equal(t, "Error: Invalid data. Required: k <= n", en.Error(err))

	_, err = combinatorics.ProbAllMarked(5, 5, 10)
	assert.Equal(t, "Некорректные данные. Требуется: k < m <= n", ru.ErrorMessage(err))

	_, err = combinatorics.PermutationsWithRepetition(2, 2, 2, 2)
	assert.Equal(t, "Сумма аргументов не равна их количеству", ru.ErrorMessage(err))
	assert.Equal(t, "Invalid data. Required: n1 + n2 + ... + nk = n", en.ErrorMessage(err))

	wrapped := fmt.Errorf("evaluate: %w", formula.ErrUnknownFormula)
	assert.Equal(t, "Unknown formula.", en.ErrorMessage(wrapped))
	assert.Equal(t, "Wrong number of arguments.", en.ErrorMessage(formula.ErrArity))

	other := errors.New("connection reset")
	assert.Equal(t, "connection reset", en.ErrorMessage(other))
	assert.Equal(t, "", en.ErrorMessage(nil))
}

func TestErrorKey(t *testing.T) {
	key, ok := i18n.ErrorKey(fmt.Errorf("x: %w", combinatorics.ErrInvalidArgument))
	assert.True(t, ok)
	assert.Equal(t, "error.invalid_argument", key)

	_, ok = i18n.ErrorKey(errors.New("plain"))
	assert.False(t, ok)
}

func TestLocalizer_JoinFamilies(t *testing.T) {
	en := i18n.MustLoadEmbedded().Localizer("en-US", 4)
	assert.Equal(t,
		"Families: permutations (Permutations), placements (Placements), combinations (Combinations), probability (Probability)",
		en.JoinFamilies())
}
