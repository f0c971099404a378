package http

import (
	"net/http"

	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
)

const resourceName = "Mapp Intelligence MCP"

// ProtectedResourceHandler godoc
//
//	@Summary		OAuth Protected Resource Metadata
//	@Description	RFC 9728 discovery document naming the authorization server MCP clients should obtain tokens from.
//	@Tags			Discovery
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.ProtectedResourceMetadata
//	@Router			/.well-known/oauth-protected-resource [get].
func ProtectedResourceHandler(domain string, baseURL func(*http.Request) string) http.HandlerFunc {
	servers := []string{}
	if jwtx.NormalizeDomain(domain) != "" {
		servers = append(servers, jwtx.IssuerForDomain(domain))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w)
		httpx.WriteJSON(w, http.StatusOK, gatewaysdk.ProtectedResourceMetadata{
			Resource:               baseURL(r),
			AuthorizationServers:   servers,
			BearerMethodsSupported: []string{"header"},
			ResourceName:           resourceName,
		})
	}
}

// Browser-based MCP clients fetch the metadata cross-origin.
func allowCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	w.Header().Set("Access-Control-Max-Age", "86400")
}

func metadataPreflight(w http.ResponseWriter, _ *http.Request) {
	allowCORS(w)
	w.WriteHeader(http.StatusNoContent)
}
