package dictionary

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is bumped whenever the cached representation changes incompatibly.
const SchemaVersion = 3

// Language is a column code of a translation in the dataset.
type Language string

const (
	LanguageEnglish        Language = "en"
	LanguageRussian        Language = "ru"
	LanguageBelarusian     Language = "be"
	LanguageUkrainian      Language = "uk"
	LanguagePolish         Language = "pl"
	LanguageCzech          Language = "cs"
	LanguageSlovak         Language = "sk"
	LanguageBulgarian      Language = "bg"
	LanguageMacedonian     Language = "mk"
	LanguageSerbian        Language = "sr"
	LanguageCroatian       Language = "hr"
	LanguageSlovenian      Language = "sl"
	LanguageChurchSlavonic Language = "cu"
	LanguageGerman         Language = "de"
	LanguageDutch          Language = "nl"
	LanguageEsperanto      Language = "eo"
)

// Languages lists every translation column in display order.
var Languages = []Language{
	LanguageEnglish,
	LanguageRussian,
	LanguageBelarusian,
	LanguageUkrainian,
	LanguagePolish,
	LanguageCzech,
	LanguageSlovak,
	LanguageBulgarian,
	LanguageMacedonian,
	LanguageSerbian,
	LanguageCroatian,
	LanguageSlovenian,
	LanguageChurchSlavonic,
	LanguageGerman,
	LanguageDutch,
	LanguageEsperanto,
}

// ParseLanguage returns the Language for a case-insensitive code.
func ParseLanguage(code string) (Language, error) {
	normalized := Language(strings.ToLower(strings.TrimSpace(code)))
	for _, lang := range Languages {
		if lang == normalized {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unknown language code: %q", code)
}

// Entry is one row of the Interslavic dictionary.
type Entry struct {
	ISV             string              `json:"isv" yaml:"isv"`
	Addition        string              `json:"addition,omitempty" yaml:"addition,omitempty"`
	PartOfSpeech    string              `json:"partOfSpeech,omitempty" yaml:"partOfSpeech,omitempty"`
	Type            string              `json:"type,omitempty" yaml:"type,omitempty"`
	Translations    map[Language]string `json:"translations,omitempty" yaml:"translations,omitempty"`
	Intelligibility string              `json:"intelligibility,omitempty" yaml:"intelligibility,omitempty"`
	UsingExample    string              `json:"usingExample,omitempty" yaml:"usingExample,omitempty"`
}

// Translation returns the translation for lang, or an empty string.
func (e Entry) Translation(lang Language) string {
	return e.Translations[lang]
}

// key identifies an entry by its full field set.
func (e Entry) key() string {
	fields := make([]string, 0, 6+len(Languages))
	fields = append(fields, e.ISV, e.Addition, e.PartOfSpeech, e.Type, e.Intelligibility, e.UsingExample)
	for _, lang := range Languages {
		fields = append(fields, e.Translations[lang])
	}
	return strings.Join(fields, "\x1f")
}

// Dataset is the ordered list of entries, in source order.
type Dataset []Entry

// Metadata describes a cached dataset.
type Metadata struct {
	FetchedAt      time.Time `json:"fetchedAt" yaml:"fetchedAt"`
	EntryCount     int       `json:"entryCount" yaml:"entryCount"`
	SourceIdentity string    `json:"sourceIdentity" yaml:"sourceIdentity"`
	SchemaVersion  int       `json:"schemaVersion" yaml:"schemaVersion"`
	Columns        []string  `json:"columns,omitempty" yaml:"columns,omitempty"`
	SkippedRows    int       `json:"skippedRows" yaml:"skippedRows"`
}

// Age returns how old the cached data is at now.
func (m Metadata) Age(now time.Time) time.Duration {
	return now.Sub(m.FetchedAt)
}
