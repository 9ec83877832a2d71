package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vedran77/switchboard/internal/transport/http/response"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database Pinger
	redis    Pinger
	logger   *slog.Logger
}

// NewHealthHandler takes nil for a dependency that is not configured.
func NewHealthHandler(database, redis Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{database: database, redis: redis, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: h.probe(ctx, "database", h.database),
		Redis:    h.probe(ctx, "redis", h.redis),
	}

	status := http.StatusOK
	if !healthy(resp.Database) || !healthy(resp.Redis) {
		resp.Status = "error"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, resp)
}

func (h *HealthHandler) probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
		return err.Error()
	}
	return "ok"
}

func healthy(state string) bool {
	return state == "ok" || state == "disabled"
}
