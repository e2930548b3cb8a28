// Package i18n renders user-facing reminder text from JSON catalogs compiled
// into the binary.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
)

const (
	LangRU = "ru"
	LangEN = "en"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager holds one catalog per language. Every catalog is pre-merged over
// the English one, so a lookup only misses when English misses too.
type Manager struct {
	defaultLanguage string
	catalogs        map[string]map[string]string
}

// NewManager loads the catalogs compiled into the binary.
func NewManager(defaultLanguage string) (*Manager, error) {
	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return NewManagerFS(defaultLanguage, locales)
}

// NewManagerFS loads every <lang>.json catalog at the root of locales.
func NewManagerFS(defaultLanguage string, locales fs.FS) (*Manager, error) {
	raw, err := readCatalogs(locales)
	if err != nil {
		return nil, err
	}
	base, ok := raw[LangEN]
	if !ok {
		return nil, fmt.Errorf("required locale %q missing", LangEN)
	}

	manager := &Manager{defaultLanguage: LangEN, catalogs: make(map[string]map[string]string, len(raw))}
	for language, messages := range raw {
		merged := maps.Clone(base)
		maps.Copy(merged, messages)
		manager.catalogs[language] = merged
	}
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func readCatalogs(locales fs.FS) (map[string]map[string]string, error) {
	names, err := fs.Glob(locales, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("no locales found")
	}

	catalogs := make(map[string]map[string]string, len(names))
	for _, name := range names {
		language := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
		content, err := fs.ReadFile(locales, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		catalogs[language] = messages
	}
	return catalogs, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return slices.Sorted(maps.Keys(manager.catalogs))
}

// NormalizeLanguage maps tags such as "ru_RU" or "en-GB" onto a loaded
// catalog, falling back to the default language.
func (manager *Manager) NormalizeLanguage(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag, _, _ = strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
	if _, ok := manager.catalogs[tag]; ok {
		return tag
	}
	return manager.defaultLanguage
}

// Translate returns the message for key, or key itself when no catalog has it.
func (manager *Manager) Translate(language string, key string) string {
	value := manager.catalogs[manager.NormalizeLanguage(language)][key]
	if strings.TrimSpace(value) == "" {
		return key
	}
	return value
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}
