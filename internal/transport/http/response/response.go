// Package response writes the JSON bodies shared by handlers and middleware.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vedran77/switchboard/internal/domain"
	"github.com/vedran77/switchboard/pkg/errutil"
	"github.com/vedran77/switchboard/pkg/validator"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// Unauthorized writes a 401 with the bearer challenge.
func Unauthorized(w http.ResponseWriter, code, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	Error(w, http.StatusUnauthorized, code, message)
}

// ServiceError maps the domain error taxonomy onto a status code. Anything
// unrecognized is logged and reported as a generic 500.
func ServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		Error(w, http.StatusBadRequest, "ALREADY_EXISTS", conflict.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		Error(w, http.StatusBadRequest, "ALREADY_EXISTS", "User already exists")
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, domain.ErrAuthenticationFailed):
		Unauthorized(w, "INVALID_CREDENTIALS", "Incorrect username or password")
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "UNAUTHORIZED", "Could not validate credentials")
	case errors.Is(err, domain.ErrForbidden):
		Error(w, http.StatusForbidden, "FORBIDDEN", "Inactive user")
	default:
		errutil.LogError(logger, "request failed", err)
		Error(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
