// Package apierror holds the JSON error envelopes returned by the API.
// Handlers never put driver errors or stack traces in these bodies.
package apierror

// Messages shared by more than one handler or middleware.
const (
	MsgUnauthenticated = "Please authenticate."
	MsgInternal        = "Something went wrong!"
	MsgValidation      = "Validation failed"
)

// APIError is the envelope for every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: MsgValidation, Fields: fields}
}
