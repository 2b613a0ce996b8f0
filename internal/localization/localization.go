// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and provides a simple way to get
// localized strings for different languages.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

//go:embed locales/*.json
var locales embed.FS

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	fallback     string
	mu           sync.RWMutex
}

// New returns a Localizer over the bundled en, uk and ru translations.
func New(fallback string) (*Localizer, error) {
	sub, err := fs.Sub(locales, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizer(sub, fallback)
}

// NewLocalizer loads every "<lang>.json" file at the root of fsys.
// fallback is the language used when a key or language is missing.
func NewLocalizer(fsys fs.FS, fallback string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
		fallback:     fallback,
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || path.Ext(file.Name()) != ".json" {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	if _, ok := l.translations[fallback]; !ok {
		return nil, fmt.Errorf("no translations for fallback language %q", fallback)
	}
	return l, nil
}

// Languages lists the loaded language codes, sorted.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	langs := lo.Keys(l.translations)
	slices.Sort(langs)
	return langs
}

// Resolve maps a client language code such as "uk" or "en-US" onto a loaded
// language, or the fallback.
func (l *Localizer) Resolve(code string) string {
	base, _, _ := strings.Cut(strings.ToLower(code), "-")
	if lo.Contains(l.Languages(), base) {
		return base
	}
	return l.fallback
}

// GetString returns the localized string for a given key and language.
// Missing keys fall back to the fallback language and then to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	if lang != l.fallback {
		if value, ok := l.translations[l.fallback][key]; ok {
			return value
		}
	}

	return key
}
