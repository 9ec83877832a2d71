// Package memory is a process-local user store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

type UserRepo struct {
	mu     sync.RWMutex
	users  []domain.User
	nextID int64
	now    func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{nextID: 1, now: time.Now}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(0, user.Email, user.Username); err != nil {
		return 0, err
	}

	now := r.now().UTC()
	u := *user
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++
	r.users = append(r.users, u)
	return u.ID, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		u := r.users[i]
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByLogin(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == identifier || u.Username == identifier {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByField(_ context.Context, field repository.UserField, value string) ([]domain.User, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown user field %q", field)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []domain.User{}
	for _, u := range r.users {
		if (field == repository.FieldEmail && u.Email == value) ||
			(field == repository.FieldUsername && u.Username == value) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

func (r *UserRepo) List(_ context.Context, skip, limit int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []domain.User{}
	if skip >= len(r.users) || limit <= 0 {
		return users, nil
	}
	end := min(skip+limit, len(r.users))
	return append(users, r.users[skip:end]...), nil
}

func (r *UserRepo) Update(_ context.Context, id int64, changes repository.UserChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	u := r.users[i]
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.Username != nil {
		u.Username = *changes.Username
	}
	if err := r.checkUnique(id, u.Email, u.Username); err != nil {
		return err
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.IsActive != nil {
		u.IsActive = *changes.IsActive
	}
	u.UpdatedAt = r.now().UTC()
	r.users[i] = u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

func (r *UserRepo) indexOf(id int64) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// checkUnique ignores the row with id self.
func (r *UserRepo) checkUnique(self int64, email, username string) error {
	for _, u := range r.users {
		if u.ID == self {
			continue
		}
		if u.Email == email {
			return fmt.Errorf("%w: email", repository.ErrUniqueViolation)
		}
		if u.Username == username {
			return fmt.Errorf("%w: username", repository.ErrUniqueViolation)
		}
	}
	return nil
}
