package dictionary

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names after normalizeColumnName.
const (
	columnISV             = "isv"
	columnAddition        = "addition"
	columnPartOfSpeech    = "partofspeech"
	columnType            = "type"
	columnIntelligibility = "intelligibility"
	columnUsingExample    = "usingexample"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NormalizeReport summarizes a Normalize run.
type NormalizeReport struct {
	Columns []string
	Rows    int
	Skipped int
}

// Normalize parses the CSV export of the dictionary sheet.
// Columns are read by header name, so added or reordered columns need no code change.
// Rows without an isv headword and rows with a stray quote are dropped and counted in the report.
// A quoted field left open until the end of the payload is a *FormatError.
func Normalize(raw []byte) (Dataset, NormalizeReport, error) {
	var report NormalizeReport

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, report, &FormatError{Message: "empty payload"}
	}
	if err != nil {
		return nil, report, &FormatError{Message: "failed to read the header row", Cause: err}
	}

	columns := make(map[string]int, len(header))
	report.Columns = make([]string, 0, len(header))
	for i, name := range header {
		normalized := normalizeColumnName(name)
		if normalized == "" {
			continue
		}
		if _, ok := columns[normalized]; ok {
			continue
		}
		columns[normalized] = i
		report.Columns = append(report.Columns, normalized)
	}
	if _, ok := columns[columnISV]; !ok {
		return nil, report, &FormatError{Message: fmt.Sprintf("no %q column in header %v", columnISV, report.Columns)}
	}

	dataset := make(Dataset, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if isMalformedRow(err) {
			report.Rows++
			report.Skipped++
			continue
		}
		if err != nil {
			return nil, report, &FormatError{Message: fmt.Sprintf("failed to read row %d", report.Rows+1), Cause: err}
		}
		report.Rows++

		get := func(column string) string {
			i, ok := columns[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		isv := get(columnISV)
		if isv == "" {
			report.Skipped++
			continue
		}

		entry := Entry{
			ISV:             isv,
			Addition:        get(columnAddition),
			PartOfSpeech:    get(columnPartOfSpeech),
			Type:            get(columnType),
			Intelligibility: get(columnIntelligibility),
			UsingExample:    get(columnUsingExample),
		}
		for _, lang := range Languages {
			value := get(string(lang))
			if value == "" {
				continue
			}
			if entry.Translations == nil {
				entry.Translations = make(map[Language]string)
			}
			entry.Translations[lang] = value
		}
		dataset = append(dataset, entry)
	}
	return dataset, report, nil
}

// isMalformedRow reports whether err only spoils the current line.
// The reader has already consumed that line, so the next Read continues after it.
func isMalformedRow(err error) bool {
	var parseErr *csv.ParseError
	if !errors.As(err, &parseErr) {
		return false
	}
	return errors.Is(parseErr.Err, csv.ErrBareQuote) || errors.Is(parseErr.Err, csv.ErrFieldCount)
}

// normalizeColumnName maps header variants like "partOfSpeech", "using_example" or " ISV " to one key.
func normalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}
