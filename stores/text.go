package stores

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText lower-cases s and strips diacritics so "Sérotonine" matches "serotonine".
// A transformer keeps state, so a fresh chain is built per call.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// textMatcher matches a folded query against any of several fields
type textMatcher struct {
	query string
}

func newTextMatcher(query string) textMatcher {
	return textMatcher{query: foldText(query)}
}

// empty reports whether the matcher accepts everything
func (m textMatcher) empty() bool {
	return m.query == ""
}

func (m textMatcher) match(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(foldText(f), m.query) {
			return true
		}
	}
	return false
}

func (m textMatcher) matchAny(fields []string) bool {
	return m.match(fields...)
}
