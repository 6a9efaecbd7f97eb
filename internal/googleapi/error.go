// Package googleapi holds the error envelope shared by the Meet and Drive
// REST clients.
package googleapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 64 * 1024

// Error is a typed failure from a Google REST endpoint.
type Error struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Status is the RPC status name, e.g. "NOT_FOUND", when present.
	Status string

	// Message is the human-readable message from the error envelope, or the
	// raw body when the envelope could not be parsed.
	Message string
}

func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("google api error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("google api error %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus reports the HTTP status code for retry classification.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// errorEnvelope is the standard Google error response body.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// CheckResponse returns a typed *Error for non-2xx responses, nil otherwise.
// It consumes (part of) the response body on failure.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(body) > 0 {
		var envelope errorEnvelope
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Message != "" {
			apiErr.Status = envelope.Error.Status
			apiErr.Message = envelope.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// IsNotFound reports whether err is a 404 from a Google endpoint.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsPermissionDenied reports whether err is a 403 from a Google endpoint.
func IsPermissionDenied(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

// IsMethodNotFound reports whether err is a 404 caused by the endpoint
// itself not being provisioned, as opposed to the resource being absent.
// Preview-only endpoints signal this with a "Method not found" message.
func IsMethodNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusNotFound &&
		strings.Contains(apiErr.Message, "Method not found")
}
