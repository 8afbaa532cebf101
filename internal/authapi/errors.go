package authapi

import (
	"errors"
	"fmt"
)

// ErrTransport marks calls that produced no usable response: the request
// failed, timed out, or the body could not be read.
var ErrTransport = errors.New("authapi: transport failure")

// Error is a non-2xx answer from the remote API.
type Error struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
}

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
