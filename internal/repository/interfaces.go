package repository

import (
	"context"
	"errors"

	"github.com/vedran77/switchboard/internal/domain"
)

// ErrUniqueViolation is returned by Create and Update when the write would
// duplicate an email or username.
var ErrUniqueViolation = errors.New("unique constraint violation")

// UserField names a column that can be looked up by exact match.
type UserField string

const (
	FieldEmail    UserField = "email"
	FieldUsername UserField = "username"
)

// Valid reports whether f is a known lookup column.
func (f UserField) Valid() bool {
	return f == FieldEmail || f == FieldUsername
}

// UserChanges holds the columns to overwrite in Update. Nil fields keep their value.
type UserChanges struct {
	Email        *string
	Username     *string
	PasswordHash *string
	IsActive     *bool
}

// UserRepository is the persistence boundary for user records.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByField(ctx context.Context, field UserField, value string) ([]domain.User, error)
	GetByLogin(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, id int64, changes UserChanges) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
}

// Transactor runs fn inside one unit of work. Repositories called with the
// context passed to fn take part in it.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
