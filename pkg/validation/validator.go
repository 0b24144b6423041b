package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports JSON field names instead of Go field names
// and registers the alias tags used by request types.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("nonempty", "min=1")
	return v
}

var indexRe = regexp.MustCompile(`\[\d+\]`)

// Issue is one violated rule. Path is the JSON field path with slice indexes
// (orders[1].price); it is empty for errors that are not tied to a field.
type Issue struct {
	Path    string
	Message string
}

// Within reports whether the issue is about field or one of its children.
// field is a dotted path without slice indexes, as encoding/json reports it.
func (is Issue) Within(field string) bool {
	if field == "" {
		return false
	}
	p := indexRe.ReplaceAllString(is.Path, "")
	return p == field || strings.HasPrefix(p, field+".")
}

// Issues converts validation or decoding errors into one issue per violated rule.
// Rule messages are looked up in table by "<fieldPath>.<tag>" where fieldPath is the
// dotted JSON path without slice indexes (orders.price.min).
// A missing value is always reported as "<fieldPath> is Required".
func Issues(err error, table map[string]string) []Issue {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	if errors.As(err, &se) {
		return []Issue{{Message: "invalid json"}}
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			return []Issue{{Message: "payload has an invalid type"}}
		}
		return []Issue{{Path: field, Message: field + " has an invalid type"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, Issue{Path: FieldPath(fe), Message: message(fe, table)})
		}
		return out
	}

	return []Issue{{Message: "invalid payload"}}
}

// Messages is Issues without the field paths.
func Messages(err error, table map[string]string) []string {
	issues := Issues(err, table)
	if issues == nil {
		return nil
	}
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

// ReplaceField puts typed where the first issue about typed.Path was and drops the
// other issues about that field, which only hold its zero value after a failed decode.
func ReplaceField(issues []Issue, typed Issue) []Issue {
	out := make([]Issue, 0, len(issues)+1)
	placed := false
	for _, is := range issues {
		if is.Within(typed.Path) {
			if !placed {
				out = append(out, typed)
				placed = true
			}
			continue
		}
		out = append(out, is)
	}
	if !placed {
		out = append([]Issue{typed}, out...)
	}
	return out
}

// FieldPath strips the root struct name from a validator namespace:
// CreateUserRequest.orders[1].price becomes orders[1].price.
func FieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError, table map[string]string) string {
	path := FieldPath(fe)
	if fe.Tag() == "required" {
		return path + " is Required"
	}
	key := indexRe.ReplaceAllString(path, "") + "." + fe.Tag()
	if msg, ok := table[key]; ok {
		return msg
	}
	return path + " " + formatFieldError(fe)
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "email":
		return "must be a valid email"
	case "min":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		if kind == reflect.Slice {
			return "must contain at least " + param + " element(s)"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		if kind == reflect.Slice {
			return "must contain at most " + param + " element(s)"
		}
		return "must be at most " + param + " characters long"
	case "nonempty":
		return "must contain at least 1 element(s)"
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
