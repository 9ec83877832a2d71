package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vedran77/switchboard/internal/auth"
	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/repository"
	"github.com/vedran77/switchboard/internal/repository/memory"
	"github.com/vedran77/switchboard/internal/repository/repotest"
	"github.com/vedran77/switchboard/pkg/errutil"
)

var testHasher = auth.NewBcryptHasher(bcrypt.MinCost)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", 30*time.Minute)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := testHasher.Hash(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	input := RegisterInput{Email: "alice@example.com", Username: "alice", Password: "s3cretpw"}

	t.Run("creates active user with hashed password", func(t *testing.T) {
		repo := repotest.NewMockUserRepository(t)
		tx := &repotest.Transactor{}
		svc := NewAuthService(repo, tx, testHasher, newTokens(), discardLogger())

		repo.On("GetByField", mock.Anything, repository.FieldEmail, "alice@example.com").Return([]domain.User{}, nil)
		repo.On("GetByField", mock.Anything, repository.FieldUsername, "alice").Return([]domain.User{}, nil)

		var stored *domain.User
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
			Return(int64(1), nil)
		repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{
			ID: 1, Email: "alice@example.com", Username: "alice", IsActive: true,
		}, nil)

		user, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, 1, tx.Calls)

		require.NotNil(t, stored)
		assert.True(t, stored.IsActive)
		assert.NotEqual(t, "s3cretpw", stored.PasswordHash)
		assert.True(t, testHasher.Verify("s3cretpw", stored.PasswordHash))
	})

	t.Run("duplicate email is reported first and nothing is created", func(t *testing.T) {
		repo := repotest.NewMockUserRepository(t)
		svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())

		repo.On("GetByField", mock.Anything, repository.FieldEmail, "alice@example.com").
			Return([]domain.User{{ID: 5, Email: "alice@example.com"}}, nil)

		_, err := svc.Register(ctx, input)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		errutil.AssertErrorCode(t, err, "USER_EMAIL_TAKEN")

		var conflict *domain.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "User with email alice@example.com already exists", conflict.Error())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := repotest.NewMockUserRepository(t)
		svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())

		repo.On("GetByField", mock.Anything, repository.FieldEmail, "alice@example.com").Return([]domain.User{}, nil)
		repo.On("GetByField", mock.Anything, repository.FieldUsername, "alice").
			Return([]domain.User{{ID: 5, Username: "alice"}}, nil)

		_, err := svc.Register(ctx, input)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		errutil.AssertErrorCode(t, err, "USER_USERNAME_TAKEN")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation past the pre-check", func(t *testing.T) {
		repo := repotest.NewMockUserRepository(t)
		svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())

		repo.On("GetByField", mock.Anything, mock.Anything, mock.Anything).Return([]domain.User{}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(int64(0), repository.ErrUniqueViolation)

		_, err := svc.Register(ctx, input)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		errutil.AssertErrorCode(t, err, "USER_ALREADY_EXISTS")
	})

	t.Run("store failure is internal", func(t *testing.T) {
		repo := repotest.NewMockUserRepository(t)
		svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())

		repo.On("GetByField", mock.Anything, repository.FieldEmail, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := svc.Register(ctx, input)
		require.ErrorIs(t, err, domain.ErrInternal)
		assert.NotErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	active := &domain.User{ID: 1, Email: "alice@example.com", Username: "alice", PasswordHash: hashOf(t, "s3cretpw"), IsActive: true}
	inactive := &domain.User{ID: 2, Email: "bob@example.com", Username: "bob", PasswordHash: hashOf(t, "s3cretpw"), IsActive: false}

	tests := []struct {
		name       string
		identifier string
		password   string
		found      *domain.User
		wantCode   string
	}{
		{name: "by username", identifier: "alice", password: "s3cretpw", found: active},
		{name: "by email", identifier: "alice@example.com", password: "s3cretpw", found: active},
		{name: "unknown user", identifier: "nobody", password: "s3cretpw", wantCode: "AUTH_USER_NOT_FOUND"},
		{name: "wrong password", identifier: "alice", password: "wrongpw", found: active, wantCode: "AUTH_INCORRECT_PASSWORD"},
		{name: "inactive with correct password", identifier: "bob", password: "s3cretpw", found: inactive, wantCode: "AUTH_USER_INACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repotest.NewMockUserRepository(t)
			svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())

			if tt.found != nil {
				repo.On("GetByLogin", mock.Anything, tt.identifier).Return(tt.found, nil)
			} else {
				repo.On("GetByLogin", mock.Anything, tt.identifier).Return(nil, nil)
			}

			user, err := svc.Authenticate(ctx, tt.identifier, tt.password)
			if tt.wantCode != "" {
				require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.found.ID, user.ID)
		})
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	repo := repotest.NewMockUserRepository(t)
	svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, newTokens(), discardLogger())
	repo.On("GetByLogin", mock.Anything, "alice").Return(nil, errors.New("timeout"))

	_, err := svc.Authenticate(context.Background(), "alice", "s3cretpw")
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.NotErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestAuthService_Login(t *testing.T) {
	repo := repotest.NewMockUserRepository(t)
	tokens := newTokens()
	svc := NewAuthService(repo, &repotest.Transactor{}, testHasher, tokens, discardLogger())

	repo.On("GetByLogin", mock.Anything, "alice").Return(&domain.User{
		ID: 42, Username: "alice", PasswordHash: hashOf(t, "s3cretpw"), IsActive: true,
	}, nil)

	resp, err := svc.Login(context.Background(), "alice", "s3cretpw")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := tokens.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(42), claims.Subject)
	assert.False(t, claims.Expired(time.Now()))
}

func TestAuthService_RegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	svc := NewAuthService(repo, memory.NewTransactor(), testHasher, newTokens(), discardLogger())

	created, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Username: "alice", Password: "s3cretpw"})
	require.NoError(t, err)

	byName, err := svc.Authenticate(ctx, "alice", "s3cretpw")
	require.NoError(t, err)
	byEmail, err := svc.Authenticate(ctx, "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Register(ctx, RegisterInput{Email: "alice@example.com", Username: "alice2", Password: "s3cretpw"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}
