package dashboard

import (
	"strings"
)

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`es-mx`) automatically fall back to their
// base language (`es`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if candidate == "" {
			continue
		}
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

func (entry *CatalogEntry) normalizeLocalizedFields() {
	entry.TitleLocalized = normalizeLocaleMap(entry.TitleLocalized)
	entry.DescriptionLocalized = normalizeLocaleMap(entry.DescriptionLocalized)
}

// TitleForLocale returns the display title for the requested locale with graceful fallback to the default title.
func (entry CatalogEntry) TitleForLocale(locale string) string {
	return ResolveLocalizedValue(entry.TitleLocalized, locale, entry.Title)
}

// DescriptionForLocale returns the localized description if available.
func (entry CatalogEntry) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(entry.DescriptionLocalized, locale, entry.Description)
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}
