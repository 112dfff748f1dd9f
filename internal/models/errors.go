package models

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrEmptyMessage         = errors.New("message is required")
	ErrMissingSession       = errors.New("session_id is required")
	ErrInvalidPayload       = errors.New("invalid request payload")
	ErrGeneratorUnavailable = errors.New("text generator unavailable")
	ErrLoaderFailed         = errors.New("data load failed")
)

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMissingSession), errors.Is(err, ErrInvalidPayload):
		return ErrorParseError
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorLLMTimeout
	case errors.Is(err, ErrGeneratorUnavailable):
		return ErrorLLMFailed
	case errors.Is(err, ErrLoaderFailed):
		return ErrorDataLoadFailed
	default:
		return ErrorInternal
	}
}

// HTTPStatus maps an error to the status returned by the HTTP transport.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case ErrorParseError:
		return http.StatusBadRequest
	case ErrorLLMTimeout:
		return http.StatusGatewayTimeout
	case ErrorLLMFailed, ErrorDataLoadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
