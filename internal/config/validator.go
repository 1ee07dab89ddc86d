package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validate returns an error listing every invalid setting.
// Database settings are only checked for the mysql backend.
func (c *Config) Validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator > %w", err)
	}

	var problems []string
	if err := validate.Struct(c); err != nil {
		problems = append(problems, translateErrors(err, trans, "Config.", "")...)
	}
	if c.Cache.Backend == BackendMySQL {
		if err := validate.Struct(c.Cache.Database); err != nil {
			problems = append(problems, translateErrors(err, trans, "DatabaseConfig.", "cache.database.")...)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func translateErrors(err error, trans ut.Translator, trimPrefix, addPrefix string) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		key := addPrefix + strings.TrimPrefix(fe.Namespace(), trimPrefix)
		problems = append(problems, fmt.Sprintf("%s: %s", key, fe.Translate(trans)))
	}
	return problems
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("notfile", isNotRegularFile); err != nil {
		return nil, nil, fmt.Errorf("failed to register notfile validation: %w", err)
	}
	if err := validate.RegisterTranslation("notfile", trans, func(ut ut.Translator) error {
		return ut.Add("notfile", "{0} must be a directory, not a file", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notfile", fe.Field())
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register notfile translation: %w", err)
	}

	return validate, trans, nil
}

// isNotRegularFile accepts empty paths and paths that do not exist yet.
func isNotRegularFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true
	}

	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return !info.Mode().IsRegular()
}
