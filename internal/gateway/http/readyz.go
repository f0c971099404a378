package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the credential store and the identity provider's signing keys
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	gatewaysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, kv Pinger, keys KeyReadiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &gatewaysdk.HealthChecks{
			KVStore: "ok",
			Keys:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check credential store connectivity
		if kv == nil {
			checks.KVStore = "error: not configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if err := kv.Ping(ctx); err != nil {
			checks.KVStore = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Signing keys load lazily; try once more before reporting them missing
		if keys == nil {
			checks.Keys = "error: not configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if !keys.Ready() {
			if err := keys.Prefetch(ctx); err != nil || !keys.Ready() {
				slogx.FromContext(ctx).Warn("signing keys not loaded", "err", err)
				checks.Keys = "error: no keys loaded"
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, gatewaysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
