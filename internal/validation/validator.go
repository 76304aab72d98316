// Package validation decodes JSON request bodies into request structs and
// checks them against their `validate` tags, reporting every failing field
// at once.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedBody means the body was not a JSON object at all. It is kept
// apart from Errors so callers can answer "bad request" without details.
var ErrMalformedBody = errors.New("malformed request body")

// FieldError is a single failing field, keyed by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the aggregated result of a failed validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Normalizer is implemented by requests that clean their own fields (trim,
// lower-case) after decoding and before constraints are checked.
type Normalizer interface {
	Normalize()
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("isodate", isISODate)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &Validator{v: v}
}

// Bind decodes body into dst (a pointer to struct) and validates it.
//
// Decoding is done field by field so a wrong JSON type on one field is
// reported as a field error next to any constraint failures on the others.
// Keys that do not match a field are ignored. A present null is a type error,
// not an absent field.
func (val *Validator) Bind(body []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return ErrMalformedBody
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("validation: Bind needs a pointer to struct, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	decodeErrs := make(map[string]string)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := jsonName(sf)
		if name == "" || !sf.IsExported() {
			continue
		}
		msg, ok := raw[name]
		if !ok {
			continue
		}
		field := rv.Field(i)
		if jsonKind(msg) == "null" {
			decodeErrs[name] = typeMessage(sf.Type, msg)
			continue
		}
		if err := json.Unmarshal(msg, field.Addr().Interface()); err != nil {
			field.Set(reflect.Zero(sf.Type))
			decodeErrs[name] = typeMessage(sf.Type, msg)
		}
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}

	constraintErrs := make(map[string]string)
	if err := val.v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, seen := constraintErrs[fe.Field()]; !seen {
				constraintErrs[fe.Field()] = message(fe)
			}
		}
	}

	var out Errors
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if msg, ok := decodeErrs[name]; ok {
			out = append(out, FieldError{Field: name, Message: msg})
		} else if msg, ok := constraintErrs[name]; ok {
			out = append(out, FieldError{Field: name, Message: msg})
		}
	}
	if len(out) > 0 {
		return out
	}
	return nil
}

// Struct validates an already populated struct.
func (val *Validator) Struct(s any) error {
	if err := val.v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := make(Errors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}
	return nil
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// maxBytes bounds the UTF-8 length of a string; bcrypt reads at most 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

func isISODate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := ParseDate(fl.Field().String())
	return err == nil
}
