package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Engine returns the validator used for entity forms (tag "validate").
func Engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		configure(validate)
	})
	return validate
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
	Engine()
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=8")  // password minimum length
	v.RegisterAlias("phone", "e164") // phone number alias
}

// Struct validates a form and returns field path -> message, or nil when valid.
// Paths use JSON names without the root type: "title.en", "options[1].ar".
func Struct(s any) map[string]string {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}
	return ToDetails(err)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + param + " is present"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "e164", "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of [" + strings.Join(strings.Fields(param), ", ") + "]"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		switch {
		case kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map:
			return "must contain at least " + param + " items"
		case isNumberKind(kind):
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		switch {
		case kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map:
			return "must contain at most " + param + " items"
		case isNumberKind(kind):
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be less than or equal to " + param
	case "ltefield":
		return "must be less than or equal to " + lowerFirst(param)
	case "gtefield":
		return "must be greater than or equal to " + lowerFirst(param)
	case "pwd":
		return "min length 8"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
