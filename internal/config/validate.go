package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	columnPattern  = regexp.MustCompile(`^[A-Za-z]{1,3}$`)
	cellRefPattern = regexp.MustCompile(`^[A-Za-z]{1,3}[1-9][0-9]*$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("column", func(fl validator.FieldLevel) bool {
		return columnPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("cellref", func(fl validator.FieldLevel) bool {
		return cellRefPattern.MatchString(fl.Field().String())
	})
	// Report settings by their file key rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return strings.ToUpper(name)
	})
	return v
}

// Validate checks row bounds, column letters and cell references.
func Validate(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating settings: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Settings.")
	key = strings.ReplaceAll(key, ".", "_")
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "column":
		return fmt.Sprintf("%s: %q is not a column letter", key, fe.Value())
	case "cellref":
		return fmt.Sprintf("%s: %q is not a cell reference like B3", key, fe.Value())
	case "required_with":
		return fmt.Sprintf("%s must be set together with %s", key, strings.ToUpper(toSnake(fe.Param())))
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", key, strings.ToUpper(toSnake(fe.Param())))
	default:
		return fmt.Sprintf("%s: failed %q (%s) check", key, fe.Tag(), fe.Param())
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}
