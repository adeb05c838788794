package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/gift-recommender/internal/chatlog"
	"github.com/jonathan/gift-recommender/internal/chunking"
)

// statusClientClosedRequest is reported when the caller went away mid-analysis
const statusClientClosedRequest = 499

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBodyTooLarge indicates the request body exceeded the configured limit
type ErrBodyTooLarge struct {
	Limit int64
}

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		tooLargeErr   *ErrBodyTooLarge
		formatErr     *chatlog.FormatError
		inputErr      *chunking.InputError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &formatErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
