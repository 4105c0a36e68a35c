package apierror

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrUpstream       ErrorCode = "UPSTREAM_ERROR"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// IsNotFound reports whether err is an APIError carrying the NOT_FOUND code.
func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsRateLimited reports whether err is an APIError carrying the RATE_LIMITED code.
func IsRateLimited(err error) bool {
	return hasCode(err, ErrRateLimited)
}

func hasCode(err error, code ErrorCode) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
