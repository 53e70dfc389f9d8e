package siray

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned by New when no API key was provided and
// the SIRAY_API_KEY environment variable is unset.
var ErrMissingAPIKey = errors.New("siray: API key must be provided via WithAPIKey or the SIRAY_API_KEY environment variable")

// APIError is the generic service failure, used for any non-2xx status
// that has no more specific variant. Match variants with errors.As.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("siray: API error (status %d): %s", e.StatusCode, e.Message)
	}
	return "siray: API error: " + e.Message
}

// AuthenticationError is returned when the service rejects the API key (401).
type AuthenticationError struct {
	Message    string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return "siray: authentication failed: " + e.Message
}

// BadRequestError is returned for HTTP 400 responses. Code and ErrorType
// carry the service-provided error code and type when present.
type BadRequestError struct {
	Message    string
	Code       string
	ErrorType  string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	if e.Code != "" || e.ErrorType != "" {
		return fmt.Sprintf("siray: bad request (%s, %s): %s", e.ErrorType, e.Code, e.Message)
	}
	return "siray: bad request: " + e.Message
}

// InternalServerError is returned for HTTP 5xx responses. The SDK never
// retries these; callers may.
type InternalServerError struct {
	Message    string
	StatusCode int
}

func (e *InternalServerError) Error() string {
	return fmt.Sprintf("siray: internal server error (status %d): %s", e.StatusCode, e.Message)
}

// ValidationError is raised locally, before any network call, for missing
// required parameters or a missing local file.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "siray: " + e.Message
}

// TimeoutError is returned by Run when the polling budget is exhausted
// before the task reaches a terminal state. It is distinct from the HTTP
// client's own timeout, which surfaces as a transport error.
type TimeoutError struct {
	TaskID  string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("siray: task %s did not reach a terminal state within %s", e.TaskID, e.Elapsed)
}

// apiErrorBody is the error payload shape. The service wraps fields under
// an "error" envelope; some endpoints return them flat. Both are accepted,
// envelope first.
type apiErrorBody struct {
	Err struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

func (b *apiErrorBody) message() string {
	if b.Err.Message != "" {
		return b.Err.Message
	}
	return b.Message
}

func (b *apiErrorBody) code() string {
	if b.Err.Code != "" {
		return b.Err.Code
	}
	return b.Code
}

func (b *apiErrorBody) errorType() string {
	if b.Err.Type != "" {
		return b.Err.Type
	}
	return b.Type
}

// errorFromStatus maps a non-2xx response to the matching error variant.
func errorFromStatus(status int, body *apiErrorBody) error {
	message := body.message()
	if message == "" {
		message = "unknown error"
	}

	switch {
	case status == 401:
		return &AuthenticationError{Message: message, StatusCode: status}
	case status == 400:
		return &BadRequestError{
			Message:    message,
			Code:       body.code(),
			ErrorType:  body.errorType(),
			StatusCode: status,
		}
	case status >= 500:
		return &InternalServerError{Message: message, StatusCode: status}
	default:
		return &APIError{Message: message, StatusCode: status}
	}
}
