package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/service"
	"github.com/vedran77/switchboard/internal/transport/http/response"
)

type contextKey string

const userKey contextKey = "user"

// IdentityResolver resolves a bearer token to its user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate rejects requests without a resolvable bearer token and stores
// the resolved user in the request context.
func Authenticate(resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Unauthorized(w, "UNAUTHORIZED", "Not authenticated")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				response.ServiceError(w, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireActive must run after Authenticate.
func RequireActive(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				response.Unauthorized(w, "UNAUTHORIZED", "Not authenticated")
				return
			}
			if _, err := service.RequireActive(user); err != nil {
				response.ServiceError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
