package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries everything a handler needs to answer a failed request:
// an HTTP status, a machine-readable code, a human message, and an optional
// details map for field-level context. RetryAfter is only set on 429s.
type AppError struct {
	Status     int                    `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	RetryAfter int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a details map and returns the error for chaining.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func PermissionDenied(message string) *AppError {
	return &AppError{
		Status:  http.StatusForbidden,
		Code:    "PERMISSION_DENIED",
		Message: message,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func Operation(code, message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
	}
}

func RateLimited(message string, retryAfter int) *AppError {
	return &AppError{
		Status:     http.StatusTooManyRequests,
		Code:       "RATE_LIMITED",
		Message:    message,
		RetryAfter: retryAfter,
	}
}

func Unavailable(code, message string) *AppError {
	return &AppError{
		Status:  http.StatusServiceUnavailable,
		Code:    code,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// As unwraps err into an *AppError, or wraps it as Internal when it is not
// one. Handlers call this at the boundary so every error maps to exactly one
// envelope.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// AI error codes. These are AppErrors like everything else; the distinct
// codes exist so clients can tell quota, timeout, content-filter and parse
// failures apart.
const (
	CodeAIQuotaExceeded   = "AI_QUOTA_EXCEEDED"
	CodeAIRateLimited     = "AI_RATE_LIMITED"
	CodeAITimeout         = "AI_TIMEOUT"
	CodeAIContentFiltered = "AI_CONTENT_FILTERED"
	CodeAIResponseParse   = "AI_RESPONSE_PARSE"
	CodeAIUnavailable     = "AI_UNAVAILABLE"
	CodeAIUnconfigured    = "AI_UNCONFIGURED"
)

func AIQuotaExceeded(err error) *AppError {
	return &AppError{
		Status:     http.StatusTooManyRequests,
		Code:       CodeAIQuotaExceeded,
		Message:    "AI provider quota exhausted",
		RetryAfter: 60,
		Err:        err,
	}
}

func AIRateLimited(err error) *AppError {
	return &AppError{
		Status:     http.StatusTooManyRequests,
		Code:       CodeAIRateLimited,
		Message:    "AI provider rate limit hit",
		RetryAfter: 30,
		Err:        err,
	}
}

func AITimeout(err error) *AppError {
	return &AppError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeAITimeout,
		Message: "AI request timed out",
		Err:     err,
	}
}

func AIContentFiltered(err error) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeAIContentFiltered,
		Message: "AI provider blocked the request content",
		Err:     err,
	}
}

func AIResponseParse(err error) *AppError {
	return &AppError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeAIResponseParse,
		Message: "AI response could not be parsed",
		Err:     err,
	}
}

func AIUnavailable(err error) *AppError {
	return &AppError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeAIUnavailable,
		Message: "AI service unavailable",
		Err:     err,
	}
}

func AIUnconfigured() *AppError {
	return &AppError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeAIUnconfigured,
		Message: "AI service is not configured",
	}
}

// Retryable reports whether the error is a transient provider failure worth
// retrying (quota and rate-limit responses).
func Retryable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == CodeAIQuotaExceeded || appErr.Code == CodeAIRateLimited
}
