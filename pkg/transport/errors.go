package transport

import (
	"errors"
	"fmt"
)

// Error is the failure surfaced by any transport operation: a network-level
// failure or a non-2xx HTTP response. When the server returned a structured
// payload, ServerMessage carries its "error" field and Body the raw bytes.
type Error struct {
	Op            string
	URL           string
	StatusCode    int
	ServerMessage string
	Body          []byte
	Err           error
}

func (e *Error) Error() string {
	switch {
	case e.ServerMessage != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.ServerMessage)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err's chain, or nil.
func AsError(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return nil
}
