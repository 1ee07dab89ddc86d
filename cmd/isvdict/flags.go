package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/isvdict/internal/dictionary"
)

type formatFlag dictionary.Format

func (f *formatFlag) Set(val string) error {
	format, err := dictionary.ParseFormat(val)
	if err != nil {
		return err
	}
	*f = formatFlag(format)
	return nil
}

func (f formatFlag) String() string {
	return string(f)
}

func (f *formatFlag) Type() string {
	return "format"
}

type languageFlag dictionary.Language

func (l *languageFlag) Set(val string) error {
	lang, err := dictionary.ParseLanguage(val)
	if err != nil {
		return fmt.Errorf("%w, possible values are %v", err, dictionary.Languages)
	}
	*l = languageFlag(lang)
	return nil
}

func (l languageFlag) String() string {
	return string(l)
}

func (l *languageFlag) Type() string {
	return "CODE"
}

var (
	_ pflag.Value = (*formatFlag)(nil)
	_ pflag.Value = (*languageFlag)(nil)
)
