package scoutjar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const genericErrorMessage = "request failed"

var (
	// ErrMalformedResponse marks a 2xx response whose body is not the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrAlreadyApplied matches an apply call rejected with 409 Conflict.
	ErrAlreadyApplied = errors.New("already applied")
	ErrNotFound       = errors.New("not found")
)

// APIError is a non-2xx response from one of the backend services.
type APIError struct {
	Service    string
	StatusCode int
	// Message is the server-provided error text, or a generic message when
	// the body carried none.
	Message string

	// generic is set when the body carried no usable error text.
	generic bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: bad status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAlreadyApplied:
		return e.StatusCode == http.StatusConflict
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

func newAPIError(service string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Service:    service,
		StatusCode: status,
		Message:    serverMessage(body),
	}
	if apiErr.Message == "" {
		apiErr.Message = genericErrorMessage
		apiErr.generic = true
	}
	return apiErr
}

// serverMessage returns the body's error or message field, or "".
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"error", "message"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	return ""
}

// UserMessage returns the text worth showing a user for err: the server
// message for API errors and the error text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return err.Error()
}

// UserMessageOr is UserMessage, except that an API error whose body had no
// error text yields fallback.
func UserMessageOr(err error, fallback string) string {
	var apiErr *APIError
	if fallback != "" && errors.As(err, &apiErr) && apiErr.generic {
		return fallback
	}
	return UserMessage(err)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
