package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vedran77/switchboard/internal/observability"
	"github.com/vedran77/switchboard/internal/transport/http/middleware"
	"github.com/vedran77/switchboard/internal/transport/ws"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Health   *HealthHandler
	Resolver middleware.IdentityResolver
	Hub      *ws.Hub
	// Registry is optional; /metrics is served only when it is set.
	Registry       *prometheus.Registry
	Metrics        *observability.Metrics
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires every route and the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	authenticated := middleware.Authenticate(cfg.Resolver, cfg.Logger)
	active := middleware.RequireActive(cfg.Logger)
	protected := func(h http.HandlerFunc) http.Handler {
		return authenticated(active(h))
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /healthcheck", cfg.Health.Check)
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	if cfg.Registry != nil {
		mux.Handle("GET /metrics", observability.Handler(cfg.Registry))
	}

	// Protected - Users
	mux.Handle("GET /users/me", protected(cfg.Users.Me))
	mux.Handle("PUT /users/me", protected(cfg.Users.UpdateMe))
	mux.Handle("GET /users/{id}", protected(cfg.Users.Get))
	mux.Handle("GET /users", protected(cfg.Users.List))

	// Relay
	mux.HandleFunc("GET /ws/{username}", ws.ServeWS(cfg.Hub, cfg.AllowedOrigins, cfg.Logger))

	var h http.Handler = mux
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.Logging(cfg.Logger, cfg.Metrics)(h)
	h = middleware.RequestID(h)
	return h
}
