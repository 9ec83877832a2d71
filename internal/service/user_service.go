package service

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vedran77/switchboard/internal/auth"
	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type UserService struct {
	users  repository.UserRepository
	tx     repository.Transactor
	hasher auth.PasswordHasher
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, tx repository.Transactor, hasher auth.PasswordHasher, logger *slog.Logger) *UserService {
	return &UserService{users: users, tx: tx, hasher: hasher, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("get user", err)
	}
	if user == nil {
		return nil, oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(domain.ErrNotFound)
	}
	return user, nil
}

// List returns users ordered by id. A non-positive limit means DefaultListLimit.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, internalError("list users", err)
	}
	return users, nil
}

// UpdateProfile applies a partial update to user id. Email and username are
// checked for uniqueness only when they change; a supplied password is hashed.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	var updated *domain.User

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		current, err := s.users.GetByID(ctx, id)
		if err != nil {
			return internalError("get user", err)
		}
		if current == nil {
			return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(domain.ErrNotFound)
		}

		var changes repository.UserChanges
		if update.Email != nil && *update.Email != current.Email {
			if err := ensureAvailable(ctx, s.users, repository.FieldEmail, *update.Email, id); err != nil {
				return err
			}
			changes.Email = update.Email
		}
		if update.Username != nil && *update.Username != current.Username {
			if err := ensureAvailable(ctx, s.users, repository.FieldUsername, *update.Username, id); err != nil {
				return err
			}
			changes.Username = update.Username
		}
		if update.Password != nil && *update.Password != "" {
			hash, err := s.hasher.Hash(*update.Password)
			if err != nil {
				return internalError("hash password", err)
			}
			changes.PasswordHash = &hash
		}
		if update.IsActive != nil && *update.IsActive != current.IsActive {
			changes.IsActive = update.IsActive
		}

		if changes == (repository.UserChanges{}) {
			updated = current
			return nil
		}

		if err := s.users.Update(ctx, id, changes); err != nil {
			return writeError("update user", err)
		}

		updated, err = s.users.GetByID(ctx, id)
		if err != nil {
			return internalError("reload user", err)
		}
		if updated == nil {
			return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ensureAvailable fails with a ConflictError when value is held by a user
// other than self. Pass self 0 for a new user.
func ensureAvailable(ctx context.Context, users repository.UserRepository, field repository.UserField, value string, self int64) error {
	matches, err := users.GetByField(ctx, field, value)
	if err != nil {
		return internalError("lookup "+string(field), err)
	}
	for _, u := range matches {
		if u.ID != self {
			return oops.Code(conflictCode(field)).
				With(string(field), value).
				Wrap(&domain.ConflictError{Field: string(field), Value: value})
		}
	}
	return nil
}

func conflictCode(field repository.UserField) string {
	if field == repository.FieldEmail {
		return "USER_EMAIL_TAKEN"
	}
	return "USER_USERNAME_TAKEN"
}
