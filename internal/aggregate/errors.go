package aggregate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports input that violates an operation's precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// fromValidator turns the first failing field of a validator error into a *ValidationError.
func fromValidator(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := ve[0]
	msg := fmt.Sprintf("failed on %q", fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = "this field is required"
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", orZero(fe.Param()))
	case "gte":
		msg = fmt.Sprintf("must be at least %s", orZero(fe.Param()))
	case "lte":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof", "payment_status", "payment_type", "payment_category", "currency":
		msg = fmt.Sprintf("unsupported value %v", fe.Value())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
