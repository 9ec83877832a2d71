package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthorized         = errors.New("could not validate credentials")
	ErrForbidden            = errors.New("forbidden")
	ErrInternal             = errors.New("internal error")
)

// ConflictError names the unique field that collided.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("User with %s %s already exists", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error {
	return ErrAlreadyExists
}
