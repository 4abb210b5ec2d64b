package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
)

// ClassifyError maps a provider failure onto one of the AI error codes.
// The Gemini SDK does not expose stable error types for quota, rate-limit
// or safety failures, so classification is by substring of the error text.
func ClassifyError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError

	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.AITimeout(err)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "quota"):
		return apperrors.AIQuotaExceeded(err)
	case strings.Contains(msg, "rate"), strings.Contains(msg, "limit"),
		strings.Contains(msg, "429"), strings.Contains(msg, "resource exhausted"):
		return apperrors.AIRateLimited(err)
	case strings.Contains(msg, "safety"), strings.Contains(msg, "blocked"):
		return apperrors.AIContentFiltered(err)
	case strings.Contains(msg, "deadline"), strings.Contains(msg, "timeout"):
		return apperrors.AITimeout(err)
	default:
		return apperrors.AIUnavailable(err)
	}
}
