package service

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

// internalError reclassifies an unexpected store or hashing failure.
func internalError(operation string, err error) error {
	return oops.Code("INTERNAL").With("operation", operation).Wrap(fmt.Errorf("%w: %w", domain.ErrInternal, err))
}

// writeError maps the errors a Create or Update can return.
func writeError(operation string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return oops.Code("USER_ALREADY_EXISTS").With("operation", operation).Wrap(fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err))
	case errors.Is(err, domain.ErrNotFound):
		return oops.Code("USER_NOT_FOUND").With("operation", operation).Wrap(err)
	default:
		return internalError(operation, err)
	}
}
