package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint that verifies database connectivity before
//	@Description	reporting the service ready to take traffic
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tellersdk.HealthResponse	"status, uptime, version"
//	@Failure		503	{object}	tellersdk.HealthResponse	"status, uptime, version - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := tellersdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
