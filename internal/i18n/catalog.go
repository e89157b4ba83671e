// Package i18n loads the calculator's message catalogs and renders labels,
// error messages and results for one locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds every locale's messages and the x/text catalog built from them.
type Bundle struct {
	locales map[string]map[string]string
	order   []string
	tags    []language.Tag
	matcher language.Matcher
	catalog *catalog.Builder
}

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// MustLoadEmbedded is LoadEmbedded for program start-up.
func MustLoadEmbedded() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFromFS loads every locales/<locale>/<namespace>.yaml file in fsys.
//
// Postcondition: Returns a Bundle containing BaseLocale, or a non-nil error.
// Keys missing from a non-base locale resolve to the base text.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.addFile(p, file); err != nil {
			return nil, err
		}
	}

	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) addFile(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, localeFromPath)
	}
	if strings.TrimSpace(file.Namespace) != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match file name %q", p, file.Namespace, namespaceFromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages are required", p)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if _, dup := messages[key]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		messages[key] = value
	}
	return nil
}

// build fills gaps from the base locale and registers every message with an
// x/text catalog. The base locale comes first so the matcher defaults to it.
func (b *Bundle) build() error {
	b.order = []string{BaseLocale}
	for locale := range b.locales {
		if locale != BaseLocale {
			b.order = append(b.order, locale)
		}
	}
	sort.Strings(b.order[1:])

	base := b.locales[BaseLocale]
	b.catalog = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	for _, locale := range b.order {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		b.tags = append(b.tags, tag)

		messages := b.locales[locale]
		for key, value := range base {
			if _, ok := messages[key]; !ok {
				messages[key] = value
			}
		}
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := b.catalog.SetString(tag, key, messages[key]); err != nil {
				return fmt.Errorf("register %s %q: %w", locale, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return nil
}

// Locales returns the available locales, base locale first.
func (b *Bundle) Locales() []string {
	return append([]string(nil), b.order...)
}

// HasLocale reports whether locale has its own catalog.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Match resolves a user-supplied language ("ru", "RU-ru", "en") to the
// closest available locale.
//
// Postcondition: ok is false when nothing matched; locale is then BaseLocale.
func (b *Bundle) Match(requested string) (locale string, ok bool) {
	tag, err := language.Parse(strings.TrimSpace(requested))
	if err != nil {
		return BaseLocale, false
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return BaseLocale, false
	}
	return b.order[idx], true
}

// Message returns the raw, unformatted text for key in locale.
func (b *Bundle) Message(locale, key string) (string, bool) {
	messages, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		messages = b.locales[BaseLocale]
	}
	value, ok := messages[strings.TrimSpace(key)]
	return value, ok
}
