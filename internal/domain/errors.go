package domain

import "errors"

// Sentinel errors shared across layers
var (
	// ErrInvalidTransition is returned when a lifecycle event is not legal
	// from the quote's current status.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrVersionConflict is returned when an optimistic-concurrency update
	// finds the quote was modified since it was read.
	ErrVersionConflict = errors.New("quote was modified concurrently")
)

// APIError is the problem-details body every error response carries
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Error type discriminators used in APIError.Type
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// validationMessages translates the validator tags our request DTOs use
// into messages the portal can show next to the field.
var validationMessages = map[string]string{
	"required": "This field is required",
	"min":      "Below the minimum allowed",
	"max":      "Exceeds the maximum allowed",
	"gt":       "Must be greater than the minimum value",
	"gte":      "Must be at least the minimum value",
	"lte":      "Must be at most the maximum value",
	"oneof":    "Must be one of the allowed values",
	"email":    "Must be a valid email address",
	"uuid":     "Must be a valid UUID",
}

// GetValidationMessage returns the message for a validator tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
