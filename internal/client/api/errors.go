package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers failures to reach the server at all.
	ErrTransport = errors.New("transport failure")
	// ErrDecode marks a response body that is not the expected JSON.
	ErrDecode = errors.New("decode failure")
	// ErrNotFound matches a StatusError carrying 404.
	ErrNotFound = errors.New("not found")
)

// StatusError reports a non-success HTTP status from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 status.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}
