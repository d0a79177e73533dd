package helper

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorMap flattens validator.v10 errors into field → messages,
// matching the error envelope's Errors shape.
func ValidationErrorMap(err error) map[string][]string {
	out := map[string][]string{}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		out["non_field"] = []string{"invalid input"}
		return out
	}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "this field is required"
		case "email":
			msg = "invalid email format"
		case "min":
			msg = "must be at least " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param()
		case "oneof":
			msg = "must be one of: " + fe.Param()
		default:
			msg = "invalid value"
		}
		out[field] = append(out[field], msg)
	}
	return out
}
