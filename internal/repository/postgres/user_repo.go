package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

const userColumns = "id, email, username, hashed_password, is_active, created_at, updated_at"

type UserRepo struct {
	pool poolIface
}

func NewUserRepo(pool poolIface) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	query := `
		INSERT INTO users (email, username, hashed_password, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1 OR username = $1 ORDER BY id LIMIT 1", identifier)
}

func (r *UserRepo) GetByField(ctx context.Context, field repository.UserField, value string) ([]domain.User, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown user field %q", field)
	}
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1 ORDER BY id", userColumns, field)
	return r.queryUsers(ctx, query, value)
}

func (r *UserRepo) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY id OFFSET $1 LIMIT $2", skip, limit)
}

func (r *UserRepo) Update(ctx context.Context, id int64, changes repository.UserChanges) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.Username != nil {
		add("username", *changes.Username)
	}
	if changes.PasswordHash != nil {
		add("hashed_password", *changes.PasswordHash)
	}
	if changes.IsActive != nil {
		add("is_active", *changes.IsActive)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.PasswordHash,
			&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
