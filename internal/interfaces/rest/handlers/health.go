package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports 503 when the database does not answer within two seconds.
func Health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check failed", "error", err)
			rest.WriteJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "degraded", Database: "unreachable"})
			return
		}
		rest.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok", Database: "ok"})
	}
}
