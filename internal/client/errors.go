// ABOUTME: The single error kind returned by backend calls.
// ABOUTME: Carries the raw response text so the UI can show it verbatim.

package client

import (
	"fmt"
	"net/http"
)

// RequestError is returned for any failed backend call: non-2xx status,
// network failure, or an unreadable response. Status is 0 when no response
// arrived.
type RequestError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

// Error returns the backend's response text when there is one.
func (e *RequestError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s failed", e.Method, e.URL)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
