package http

import (
	"net/http"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/service"
	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

type SetupHandler struct {
	SettingsService *service.SettingsService
}

// ServeHTTP stores credentials submitted from the post-login setup page.
//
//	@Summary		Link credentials during sign-up
//	@Description	Stores Mapp credentials for the subject of a session token minted by the identity provider's post-login action.
//	@Description	The token is an HS256 JWT signed with the shared action secret.
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatewaysdk.SetupRequest			true	"Session token and Mapp API client credentials"
//	@Success		200		{object}	gatewaysdk.MutationResponse	"Saved"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse	"Invalid body, missing fields or unsupported baseUrl"
//	@Failure		401		{object}	gatewaysdk.ErrorResponse	"Invalid or expired session token"
//	@Failure		429		{object}	gatewaysdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500		{object}	gatewaysdk.ErrorResponse	"Action secret not configured"
//	@Router			/api/setup [post].
func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.SettingsService.SetupVerifier == nil {
		writeCredentialError(w, r, service.ErrSetupNotConfigured)
		return
	}

	var req gatewaysdk.SetupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	id, err := h.SettingsService.Setup(ctx, service.SetupRequest{
		SessionToken: req.SessionToken,
		CredentialInput: service.CredentialInput{
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			BaseURL:      req.BaseURL,
		},
	})
	if err != nil {
		writeCredentialError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("credentials linked via setup", "sub", id)
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.MutationResponse{
		Success: true,
		Message: msgSaved,
	})
}
