package usecase

import (
	"errors"

	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrOutcomeMissing        = errors.New("cannot evaluate without a recorded result")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ErrorCode maps an error to the code reported by the action layer.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOutcomeMissing), errors.Is(err, evaluator.ErrInvalidConfig):
		return "BAD_REQUEST"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrDependencyUnavailable):
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
