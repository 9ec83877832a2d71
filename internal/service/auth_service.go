package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/samber/oops"

	"github.com/vedran77/switchboard/internal/auth"
	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
)

// timingPassword is hashed once and verified against when a login names an
// unknown user, so both paths pay for one bcrypt comparison.
const timingPassword = "switchboard-timing-equalizer"

type AuthService struct {
	users  repository.UserRepository
	tx     repository.Transactor
	hasher auth.PasswordHasher
	tokens *auth.TokenService
	logger *slog.Logger

	timingOnce sync.Once
	timingHash string
}

func NewAuthService(
	users repository.UserRepository,
	tx repository.Transactor,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tx:     tx,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an active user. Email is checked before username, so a
// request colliding on both reports the email.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	var created *domain.User

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := ensureAvailable(ctx, s.users, repository.FieldEmail, input.Email, 0); err != nil {
			return err
		}
		if err := ensureAvailable(ctx, s.users, repository.FieldUsername, input.Username, 0); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return internalError("hash password", err)
		}

		id, err := s.users.Create(ctx, &domain.User{
			Email:        input.Email,
			Username:     input.Username,
			PasswordHash: hash,
			IsActive:     true,
		})
		if err != nil {
			return writeError("create user", err)
		}

		created, err = s.users.GetByID(ctx, id)
		if err != nil {
			return internalError("reload user", err)
		}
		if created == nil {
			return internalError("reload user", oops.With("user_id", id).Errorf("created user %d not readable", id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate resolves identifier as an email or a username and checks the
// password. Every failure wraps domain.ErrAuthenticationFailed; the oops code
// tells them apart.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	user, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		return nil, internalError("lookup login", err)
	}

	if user == nil {
		s.hasher.Verify(password, s.dummyHash())
		return nil, oops.Code("AUTH_USER_NOT_FOUND").With("identifier", identifier).Wrap(domain.ErrAuthenticationFailed)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, oops.Code("AUTH_INCORRECT_PASSWORD").With("user_id", user.ID).Wrap(domain.ErrAuthenticationFailed)
	}
	if !user.IsActive {
		return nil, oops.Code("AUTH_USER_INACTIVE").With("user_id", user.ID).Wrap(domain.ErrAuthenticationFailed)
	}

	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the user id.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueDefault(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, internalError("issue token", err)
	}

	return &TokenResponse{AccessToken: token, TokenType: auth.TokenTypeBearer}, nil
}

func (s *AuthService) dummyHash() string {
	s.timingOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.logger.Warn("timing hash unavailable", "error", err)
			return
		}
		s.timingHash = hash
	})
	return s.timingHash
}
