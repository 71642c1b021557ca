package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrServer is wrapped by every [*MapError].
	ErrServer = errors.New("server error")
	// ErrDecoding is wrapped by every [*DecodingError].
	ErrDecoding = errors.New("decoding failed")
)

// MapError reports a response whose status code is in the server error
// range. The payload was not decoded.
type MapError struct {
	StatusCode int
	Body       string
}

func (e *MapError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", ErrServer, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d, body: %s", ErrServer, e.StatusCode, e.Body)
}

func (e *MapError) Unwrap() error {
	return ErrServer
}

// DecodingError reports a payload that could not be decoded into Target.
type DecodingError struct {
	Target     string
	StatusCode int
	Err        error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%v: into %s (status %d): %v", ErrDecoding, e.Target, e.StatusCode, e.Err)
}

func (e *DecodingError) Unwrap() []error {
	return []error{ErrDecoding, e.Err}
}
