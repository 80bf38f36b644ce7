package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Issue is one entry of a validation error list ({"detail": [{"loc":..,"msg":..,"type":..}]}).
type Issue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// APIError is a non-2xx answer from a service.
type APIError struct {
	Service    string
	StatusCode int
	Detail     string
	Issues     []Issue
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Unauthorized reports a rejected or missing bearer token.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Forbidden reports an authenticated caller lacking permissions.
func (e *APIError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// TransportError wraps failures before a status code was obtained.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s service request failed: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s service: decode response (status %d): %v", e.Service, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newAPIError(service string, status int, body []byte) *APIError {
	apiErr := &APIError{Service: service, StatusCode: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var issues []Issue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		apiErr.Issues = issues
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}

// Message is the single string a front-end shows for err, whatever its category.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// IsAPIError reports whether the server answered err with an error status.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
