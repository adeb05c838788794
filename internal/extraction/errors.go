package extraction

import "fmt"

// APICallError reports a failed completion call for one chunk
type APICallError struct {
	Chunk   int
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed for chunk %d: %s: %v", e.Chunk, e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed for chunk %d: %s", e.Chunk, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError reports model output that could not be read as a signal profile
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
