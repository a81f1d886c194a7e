// Package response defines the JSON error envelope shared by the HTTP handlers
// and middleware.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const StatusError = "error"

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the body of every non-2xx JSON response.
type Error struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func NewError(msg string) Error {
	return Error{
		Status:  StatusError,
		Message: msg,
	}
}

// Predefined error responses for common scenarios.
var (
	EmptyRequestBody   = NewError("empty request body")
	InvalidRequestBody = NewError("invalid request body")
	InvalidQuery       = NewError("invalid query parameter")
	ServerError        = NewError("server error occurred")
	StoreUnavailable   = NewError("analysis store unavailable")
)

// Validation builds an Error listing every failed validator constraint in err.
func Validation(err error) Error {
	resp := NewError("validation error")
	resp.Errors = fieldErrors(err)
	return resp
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "min":
		return "value is too small"
	case "max":
		return "value is too large"
	default:
		return "invalid value"
	}
}

func fieldErrors(err error) []FieldError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Message: messageForTag(e.Tag()),
		})
	}

	return out
}
