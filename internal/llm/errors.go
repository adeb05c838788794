package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from provider")

// CompletionError wraps a provider failure so callers can tell it apart from parse errors
type CompletionError struct {
	Provider Provider
	Model    string
	Cause    error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion failed (model %s): %v", e.Provider, e.Model, e.Cause)
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}
