// Package entity defines the request and response bodies of the HTTP API.
package entity

// ErrorMsg is the body of every handled error except validation, rate limit
// and internal errors.
type ErrorMsg struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// InternalErrorMsg is the 500 body. Detail is only filled in development.
type InternalErrorMsg struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FieldError describes one rejected input. Field is a location path such as
// "body -> email" or "query -> page".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ValidationErrorMsg struct {
	Errors  bool         `json:"errors"`
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

type RateLimitMsg struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
	RetryAfter int    `json:"retry_after"`
}

// Msg is a plain confirmation body.
type Msg struct {
	Message string `json:"message"`
}

type HealthMsg struct {
	Status string `json:"status"`
}

// Locations used in FieldError paths.
const (
	LocBody  = "body"
	LocQuery = "query"
	LocPath  = "path"
)

// NewFieldError builds a FieldError for the named input at loc.
func NewFieldError(loc, name, message, typ string) FieldError {
	field := loc
	if name != "" {
		field = loc + " -> " + name
	}
	return FieldError{Field: field, Message: message, Type: typ}
}

// ValidationError is returned by Validate and the request parsers; the HTTP
// layer renders it as a 422 ValidationErrorMsg.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation error"
	}
	return "validation error: " + e.Details[0].Field + ": " + e.Details[0].Message
}

func NewValidationError(details ...FieldError) *ValidationError {
	return &ValidationError{Details: details}
}
