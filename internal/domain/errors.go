// Package domain defines core types, interfaces, and errors for the extractor.
package domain

import "fmt"

// AuthenticationError indicates a credential or endpoint resolution failure.
// It is fatal for the whole run.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// RequestError indicates a non-2xx API response other than an auth failure.
// Body carries the raw response body for diagnosis.
type RequestError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Body)
	}
	return e.Message
}

// ConfigurationError indicates invalid or missing table configuration,
// detected before any network call where possible.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// QueryError indicates the metrics API reported a non-empty error list.
// Payload carries the API's error payload verbatim.
type QueryError struct {
	Message string
	Payload string
}

func (e *QueryError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Payload)
	}
	return e.Message
}

// ErrAuthentication creates an AuthenticationError with a formatted message.
func ErrAuthentication(format string, args ...interface{}) *AuthenticationError {
	return &AuthenticationError{Message: fmt.Sprintf(format, args...)}
}

// ErrRequest creates a RequestError for the given status code and body.
func ErrRequest(statusCode int, body, format string, args ...interface{}) *RequestError {
	return &RequestError{StatusCode: statusCode, Message: fmt.Sprintf(format, args...), Body: body}
}

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ErrQuery creates a QueryError carrying the API error payload.
func ErrQuery(payload, format string, args ...interface{}) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...), Payload: payload}
}
