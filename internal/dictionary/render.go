package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how Render prints entries.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var Formats = []Format{FormatHuman, FormatJSON, FormatYAML}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for _, format := range Formats {
		if Format(strings.ToLower(s)) == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %q, possible values are %v", s, Formats)
}

// Structured reports whether the format is meant for programs rather than people.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// Render formats entries. It does not modify entries.
func Render(entries []Entry, format Format) (string, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return renderStructured(structuredRecords(entries), format)
	case FormatHuman, "":
		return renderHuman(entries), nil
	}
	return "", fmt.Errorf("unknown output format: %q", format)
}

// StructuredRecord returns every field of the entry, using "" for absent values.
func StructuredRecord(entry Entry) map[string]string {
	record := map[string]string{
		"isv":             entry.ISV,
		"addition":        entry.Addition,
		"partOfSpeech":    entry.PartOfSpeech,
		"type":            entry.Type,
		"intelligibility": entry.Intelligibility,
		"usingExample":    entry.UsingExample,
	}
	for _, lang := range Languages {
		record[string(lang)] = entry.Translations[lang]
	}
	return record
}

func structuredRecords(entries []Entry) []map[string]string {
	records := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		records = append(records, StructuredRecord(entry))
	}
	return records
}

func renderStructured(v any, format Format) (string, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return "", fmt.Errorf("json.Encoder.Encode > %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return "", fmt.Errorf("yaml.Encoder.Encode > %w", err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("yaml.Encoder.Close > %w", err)
		}
	default:
		return "", fmt.Errorf("%q is not a structured format", format)
	}
	return buf.String(), nil
}

func renderHuman(entries []Entry) string {
	if len(entries) == 0 {
		return "No matches found.\n"
	}

	headword := color.New(color.FgCyan, color.Bold).SprintFunc()
	label := color.New(color.Faint).SprintFunc()

	var order []string
	groups := make(map[string][]Entry)
	for _, entry := range entries {
		if _, ok := groups[entry.ISV]; !ok {
			order = append(order, entry.ISV)
		}
		groups[entry.ISV] = append(groups[entry.ISV], entry)
	}

	var builder strings.Builder
	for i, isv := range order {
		if i > 0 {
			builder.WriteString("\n")
		}
		group := groups[isv]
		builder.WriteString(fmt.Sprintf("[ISV] %s\n", headword(isv)))

		example := ""
		for _, entry := range group {
			builder.WriteString("  " + describeEntry(entry) + "\n")
			for _, lang := range Languages {
				if translation := entry.Translations[lang]; translation != "" {
					builder.WriteString(fmt.Sprintf("    %s %s\n", label(strings.ToUpper(string(lang))+":"), translation))
				}
			}
			if entry.Intelligibility != "" {
				builder.WriteString(fmt.Sprintf("    %s %s\n", label("Intelligibility:"), entry.Intelligibility))
			}
			if example == "" {
				example = entry.UsingExample
			}
		}
		if example != "" {
			builder.WriteString(fmt.Sprintf("  %s %s\n", label("Example:"), example))
		}
	}

	builder.WriteString(fmt.Sprintf("\nTotal: %d %s in %d %s\n",
		len(entries), plural(len(entries), "match", "matches"),
		len(order), plural(len(order), "headword", "headwords"),
	))
	return builder.String()
}

// describeEntry renders the part of speech, addition and type of one entry on a line.
func describeEntry(entry Entry) string {
	parts := make([]string, 0, 3)
	if entry.PartOfSpeech != "" {
		parts = append(parts, entry.PartOfSpeech)
	}
	if entry.Addition != "" {
		parts = append(parts, entry.Addition)
	}
	if entry.Type != "" {
		parts = append(parts, "[type "+entry.Type+"]")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
