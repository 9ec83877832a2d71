package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/observability"
	"github.com/vedran77/switchboard/internal/service"
	"github.com/vedran77/switchboard/internal/transport/http/response"
	"github.com/vedran77/switchboard/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	metrics     *observability.Metrics
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, metrics *observability.Metrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: metrics, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	input.Email = validator.Normalize(input.Email)
	input.Username = validator.Normalize(input.Username)

	if errs := validator.ValidateRegister(input.Email, input.Username, input.Password); errs.HasErrors() {
		response.ValidationErrors(w, errs)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		response.ServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, user)
}

// Login takes the OAuth2 password form: username (or email) and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}
	identifier := validator.Normalize(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	if errs := validator.ValidateLogin(identifier, password); errs.HasErrors() {
		response.ValidationErrors(w, errs)
		return
	}

	token, err := h.authService.Login(r.Context(), identifier, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailed) {
			h.metrics.AuthAttempt("failure")
			h.logger.InfoContext(r.Context(), "login rejected", "identifier", identifier)
		} else {
			h.metrics.AuthAttempt("error")
		}
		response.ServiceError(w, h.logger, err)
		return
	}

	h.metrics.AuthAttempt("success")
	response.JSON(w, http.StatusOK, token)
}
