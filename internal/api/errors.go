package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFallbackExhausted is returned when the bundled snapshot cannot serve a read
	ErrFallbackExhausted = errors.New("snapshot fallback exhausted")

	// ErrNotFound is returned when an email id is absent even from the snapshot
	ErrNotFound = fmt.Errorf("%w: email not found", ErrFallbackExhausted)
)

// RequestError is the single error kind for failed backend calls. Status is
// zero when the request never produced an HTTP response.
type RequestError struct {
	Op     string
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString("api error")
	if e.Op != "" {
		b.WriteString(" (" + e.Op + ")")
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %d", e.Status)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(" " + body)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsTransport reports whether the request failed before a response arrived
func (e *RequestError) IsTransport() bool { return e.Status == 0 }

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
