package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/internal/service"
	"github.com/vedran77/switchboard/internal/transport/http/middleware"
	"github.com/vedran77/switchboard/internal/transport/http/response"
	"github.com/vedran77/switchboard/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, middleware.CurrentUser(r.Context()))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	input.Email = validator.NormalizePtr(input.Email)
	input.Username = validator.NormalizePtr(input.Username)

	if errs := validator.ValidateUpdate(input.Email, input.Username, input.Password); errs.HasErrors() {
		response.ValidationErrors(w, errs)
		return
	}

	current := middleware.CurrentUser(r.Context())
	user, err := h.userService.UpdateProfile(r.Context(), current.ID, input)
	if err != nil {
		response.ServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		response.ServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// List accepts skip and limit query parameters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	errs := make(validator.ValidationErrors)
	skip := queryInt(r, "skip", 0, errs)
	limit := queryInt(r, "limit", service.DefaultListLimit, errs)
	if errs.HasErrors() {
		response.ValidationErrors(w, errs)
		return
	}

	users, err := h.userService.List(r.Context(), skip, limit)
	if err != nil {
		response.ServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, users)
}

func queryInt(r *http.Request, key string, fallback int, errs validator.ValidationErrors) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		errs.Add(key, "Must be a non-negative integer")
		return fallback
	}
	return v
}
