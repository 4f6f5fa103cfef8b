package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no verified identity accompanied the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the identity is known but lacks the role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrQuotaExceeded means the author's membership tier ceiling is reached.
	ErrQuotaExceeded = errors.New("post limit reached")

	// ErrDuplicate means a unique resource already exists.
	ErrDuplicate = errors.New("already exists")

	// ErrValidation wraps a description of the offending field.
	ErrValidation = errors.New("validation failed")
)

func invalid(field, problem string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, problem)
}
