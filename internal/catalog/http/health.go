package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}

// HealthHandler pings storage and reports only up or down.
func HealthHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("health check failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "error"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

// LivezHandler answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
