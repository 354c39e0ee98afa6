// Package validate checks untrusted input against the declared shape of each
// operation and reports every violated field.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// FieldError names one violated field by its JSON name.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// DateLayout is the wire format of dates of birth.
const DateLayout = "01/02/2006"

var (
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
	phonePattern = regexp.MustCompile(`^\d{5,10}$`)
)

var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI", "ID", "IL", "IN", "IA",
	"KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM",
	"NY", "NC", "ND", "OH", "OK", "OR", "PA", "PR", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA",
	"WA", "WV", "WI", "WY",
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(val.RegisterValidation("zip5", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	}))
	must(val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))
	must(val.RegisterValidation("mmddyyyy", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	}))
	must(val.RegisterValidation("usstate", func(fl validator.FieldLevel) bool {
		return lo.Contains(stateCodes, fl.Field().String())
	}))
	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ParseDate parses a MM/DD/YYYY date and rejects impossible calendar days.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q: want MM/DD/YYYY", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return t, nil
}

// Struct validates s and returns every violation, or nil when s is valid.
func Struct(s any) []FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "input", Reason: err.Error()}}
	}
	return lo.Map(verrs, func(fe validator.FieldError, _ int) FieldError {
		return FieldError{Field: fe.Field(), Reason: reason(fe)}
	})
}

// ID checks a positive entity identifier.
func ID(field string, id int64) []FieldError {
	if id <= 0 {
		return []FieldError{{Field: field, Reason: "is required and must be a positive number"}}
	}
	return nil
}

// Email checks an email address used as a lookup key.
func Email(field, email string) []FieldError {
	if err := v.Var(email, "required,email"); err != nil {
		return []FieldError{{Field: field, Reason: "is required and must be a valid email"}}
	}
	return nil
}

// Name checks a required, non-empty name used as a lookup key.
func Name(field, name string) []FieldError {
	if strings.TrimSpace(name) == "" {
		return []FieldError{{Field: field, Reason: "is required"}}
	}
	return nil
}

// Decode reads one JSON object from r into dst. Malformed bodies become
// field errors.
func Decode(r io.Reader, dst any) []FieldError {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return DecodeError(err)
	}
	return nil
}

// DecodeError converts a JSON decoding error into field errors.
func DecodeError(err error) []FieldError {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return []FieldError{{Field: "body", Reason: "is required"}}
	case errors.As(err, &syntaxErr):
		return []FieldError{{Field: "body", Reason: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []FieldError{{Field: field, Reason: "must be " + jsonKind(typeErr.Type)}}
	default:
		return []FieldError{{Field: "body", Reason: "is not valid JSON"}}
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "zip5":
		return "must be 5 digits"
	case "phone":
		return "must be 5 to 10 digits"
	case "mmddyyyy":
		return "must be a date in MM/DD/YYYY format"
	case "usstate":
		return "must be a two-letter state code"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
