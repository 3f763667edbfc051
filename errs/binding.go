package errs

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromBindError turns a JSON decoding failure into per-field messages.
func FromBindError(err error) *APIError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return FieldError(jsonField(typeErr.Field), typeMessage(typeErr.Type))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FieldError("non_field_errors", "JSON parse error - "+err.Error())
	}
	if errors.Is(err, io.EOF) {
		return FieldError("non_field_errors", "No data provided")
	}

	return FieldError("non_field_errors", err.Error())
}

// jsonField drops the embedded struct path the decoder prefixes, e.g. "ProfileInput.bio".
func jsonField(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	default:
		return "Invalid value."
	}
}

// FromValidator converts validator failures into per-field messages keyed by json name.
func FromValidator(err error) *APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldError("non_field_errors", err.Error())
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fieldName(fe), validatorMessage(fe))
	}
	return Validation(fields)
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func validatorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "min":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "oneof":
		return "\"" + toString(fe.Value()) + "\" is not a valid choice."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}

func toString(v interface{}) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}
