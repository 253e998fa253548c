package parse

import (
	"regexp"
	"strings"
)

// languageIndicators maps a canonical language name to the codes and
// words that signal it in a filename or path. Grounded on
// original_source's core/language_utils.py LANGUAGE_INDICATORS table.
var languageIndicators = map[string][]string{
	"German":     {"DE", "GERMAN", "DEUTSCH"},
	"French":     {"FR", "FRENCH", "FRANCAIS", "FRANÇAIS"},
	"Spanish":    {"ES", "SPANISH", "ESPANOL", "ESPAÑOL"},
	"Italian":    {"IT", "ITALIAN", "ITALIANO"},
	"Portuguese": {"PT", "PORTUGUESE", "PORTUGUES", "PORTUGUÊS"},
	"Dutch":      {"NL", "DUTCH", "NEDERLANDS"},
	"Polish":     {"PL", "POLISH", "POLSKI"},
	"Russian":    {"RU", "RUSSIAN"},
	"Japanese":   {"JP", "JAPANESE"},
	"Chinese":    {"ZH", "CHINESE"},
	"Korean":     {"KR", "KOREAN"},
}

// languageOrder fixes a deterministic scan order over languageIndicators
// so DetectLanguage never depends on Go's randomized map iteration.
var languageOrder = []string{
	"German", "French", "Spanish", "Italian", "Portuguese",
	"Dutch", "Polish", "Russian", "Japanese", "Chinese", "Korean",
}

// DetectLanguage scans text for a delimited language code or name and
// returns its canonical name, defaulting to "English" (spec §4.2
// Language detection).
func DetectLanguage(text string) string {
	for _, lang := range languageOrder {
		for _, indicator := range languageIndicators[lang] {
			if hasWordBoundary(text, indicator) {
				return lang
			}
		}
	}
	return "English"
}

// boundaryPatterns precompiles one word-boundary regexp per indicator at
// package init, so DetectLanguage — reachable concurrently from a running
// scheduler task and from HTTP handlers (search preview, manual import) —
// never lazily writes to a shared cache at call time.
var boundaryPatterns = func() map[string]*regexp.Regexp {
	patterns := map[string]*regexp.Regexp{}
	for _, indicators := range languageIndicators {
		for _, indicator := range indicators {
			if _, ok := patterns[indicator]; ok {
				continue
			}
			patterns[indicator] = regexp.MustCompile(`(?i)(?:^|[^\p{L}])` + regexp.QuoteMeta(indicator) + `(?:$|[^\p{L}])`)
		}
	}
	return patterns
}()

// hasWordBoundary reports whether indicator appears in text delimited by
// non-letter boundaries, case-insensitively.
func hasWordBoundary(text, indicator string) bool {
	re, ok := boundaryPatterns[indicator]
	if !ok {
		re = regexp.MustCompile(`(?i)(?:^|[^\p{L}])` + regexp.QuoteMeta(indicator) + `(?:$|[^\p{L}])`)
	}
	return re.MatchString(text)
}

// NormalizeLanguageName canonicalizes casing/aliases for a language name
// or code the same way DetectLanguage resolves indicators, for callers
// that already hold a raw string (e.g. a provider-supplied field).
func NormalizeLanguageName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "English"
	}
	return DetectLanguage(trimmed)
}

// specialEditionMarkers are matched as case-insensitive substrings
// (spec §4.2 Special-edition detection).
var specialEditionMarkers = []string{
	"special", "annual", "collector", "holiday", "christmas",
	"summer special", "winter special", "spring special", "fall special",
	"anniversary", "yearbook", "best of", "commemorative",
}

// IsSpecialEdition reports whether text names a special-edition issue.
func IsSpecialEdition(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range specialEditionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
