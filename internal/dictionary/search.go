package dictionary

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query selects entries from a Dataset.
type Query struct {
	Terms []string
	// Language restricts translation matching to one column. Empty means every column.
	Language Language
	// FoldDiacritics makes the isv comparison ignore ISV diacritics, e.g. "cas" matches "čas".
	FoldDiacritics bool
}

// Search returns the entries matching any of the query terms, in dataset order.
// An entry matches when a term is a case-insensitive substring of its isv headword
// or of a translation. Identical entries are returned once.
// A query without non-blank terms returns nothing.
func Search(dataset Dataset, query Query) []Entry {
	m := newMatcher(query)
	if len(m.terms) == 0 {
		return []Entry{}
	}

	results := make([]Entry, 0)
	seen := make(map[string]struct{})
	for _, entry := range dataset {
		if !m.matches(entry) {
			continue
		}
		key := entry.key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, entry)
	}
	return results
}

type matcher struct {
	caser          cases.Caser
	language       Language
	foldDiacritics bool
	terms          []string
	isvTerms       []string
}

func newMatcher(query Query) *matcher {
	m := &matcher{
		caser:          cases.Fold(),
		language:       query.Language,
		foldDiacritics: query.FoldDiacritics,
	}
	for _, term := range query.Terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		folded := m.fold(term)
		m.terms = append(m.terms, folded)
		if m.foldDiacritics {
			m.isvTerms = append(m.isvTerms, stripDiacritics(folded))
		} else {
			m.isvTerms = append(m.isvTerms, folded)
		}
	}
	return m
}

func (m *matcher) fold(s string) string {
	return m.caser.String(norm.NFC.String(s))
}

func (m *matcher) matches(entry Entry) bool {
	isv := m.fold(entry.ISV)
	if m.foldDiacritics {
		isv = stripDiacritics(isv)
	}
	if containsAny(isv, m.isvTerms) {
		return true
	}

	if m.language != "" {
		translation := entry.Translations[m.language]
		return translation != "" && containsAny(m.fold(translation), m.terms)
	}
	for _, lang := range Languages {
		translation := entry.Translations[lang]
		if translation != "" && containsAny(m.fold(translation), m.terms) {
			return true
		}
	}
	return false
}

func containsAny(value string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(value, term) {
			return true
		}
	}
	return false
}

// stripDiacritics removes combining marks from an already case-folded string.
// đ has no decomposition and is spelled dj in the plain ISV alphabet.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return strings.ReplaceAll(stripped, "đ", "dj")
}
