package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrURLGeneration is the sentinel wrapped by [URLGenerationError].
	ErrURLGeneration = errors.New("url generation failed")
	// ErrInvalidMethod is returned when a provider names an unsupported verb.
	ErrInvalidMethod = errors.New("invalid http method")
)

// URLGenerationError is returned when a provider's parts cannot be
// composed into a valid absolute URL.
type URLGenerationError struct {
	Scheme string
	Host   string
	Path   string
	Err    error
}

func (e *URLGenerationError) Error() string {
	return fmt.Sprintf("%v: scheme[%q] host[%q] path[%q]", ErrURLGeneration, e.Scheme, e.Host, e.Path)
}

// Unwrap exposes both the sentinel and the parse failure, if any.
func (e *URLGenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrURLGeneration}
	}

	return []error{ErrURLGeneration, e.Err}
}
