package service

import (
	"context"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/vedran77/switchboard/internal/auth"
	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

// IdentityResolver turns a bearer token into the user it was issued for.
// Nothing is cached between calls.
type IdentityResolver struct {
	tokens *auth.TokenService
	users  repository.UserRepository
	now    func() time.Time
}

func NewIdentityResolver(tokens *auth.TokenService, users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users, now: time.Now}
}

// Resolve fails with domain.ErrUnauthorized for a bad signature, a missing or
// non-numeric subject, an expired token or an unknown user, and with
// domain.ErrInternal when the store fails.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").With("reason", err.Error()).Wrap(domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, oops.Code("TOKEN_SUBJECT_INVALID").With("subject", claims.Subject).Wrap(domain.ErrUnauthorized)
	}

	if claims.Expired(r.now()) {
		return nil, oops.Code("TOKEN_EXPIRED").With("user_id", id).Wrap(domain.ErrUnauthorized)
	}

	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("resolve identity", err)
	}
	if user == nil {
		return nil, oops.Code("TOKEN_USER_NOT_FOUND").With("user_id", id).Wrap(domain.ErrUnauthorized)
	}

	return user, nil
}

// RequireActive passes active users through and rejects the rest with domain.ErrForbidden.
func RequireActive(user *domain.User) (*domain.User, error) {
	if !user.IsActive {
		return nil, oops.Code("USER_INACTIVE").With("user_id", user.ID).Wrap(domain.ErrForbidden)
	}
	return user, nil
}
