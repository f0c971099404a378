package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
)

func presence(set bool) string {
	if set {
		return "configured"
	}
	return "missing"
}

// ConfigHealthHandler godoc
//
//	@Summary		Configuration Health
//	@Description	Reports which required deployment settings are present without revealing their values.
//	@Description	Returns 503 while any of them is missing.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.ConfigHealthResponse	"every setting configured"
//	@Failure		503	{object}	gatewaysdk.ConfigHealthResponse	"at least one setting missing"
//	@Router			/api/health [get].
func ConfigHealthHandler(p ConfigPresence) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := gatewaysdk.ConfigHealthResponse{
			Status:        "ok",
			Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
			Auth0Domain:   presence(p.Domain),
			Auth0Audience: presence(p.Audience),
			EncryptionKey: presence(p.EncryptionKey),
			KVStore:       presence(p.KVStore),
		}

		code := http.StatusOK
		if !p.Domain || !p.Audience || !p.EncryptionKey || !p.KVStore {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}
