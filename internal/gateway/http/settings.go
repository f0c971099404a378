package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/service"
	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

const (
	msgInvalidJSON  = "Invalid JSON body"
	msgSaved        = "Mapp credentials saved successfully"
	msgDeleted      = "Mapp credentials deleted"
	msgStoreFailure = "Credential store unavailable"
)

type SettingsHandler struct {
	SettingsService *service.SettingsService
}

// identity returns the verified subject placed in the context by AuthnMiddleware.
func identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	sub, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		gatewaysdk.WriteError(w, http.StatusUnauthorized, httpx.DescInvalidToken)
		return "", false
	}
	return domain.Identity(sub), true
}

// HandleGet reports whether credentials are stored for the caller.
//
//	@Summary		Get credential status
//	@Description	Reports whether Mapp credentials are linked to the caller. The client id is masked and the secret is never returned.
//	@Tags			Settings
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.SettingsResponse	"configured, clientId (masked), baseUrl"
//	@Failure		401	{object}	gatewaysdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	gatewaysdk.ErrorResponse	"Credential store unavailable"
//	@Router			/api/settings [get].
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := identity(w, r)
	if !ok {
		return
	}

	st, err := h.SettingsService.Status(ctx, id)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read credential status", "err", err)
		gatewaysdk.WriteError(w, http.StatusInternalServerError, msgStoreFailure)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.SettingsResponse{
		Configured: st.Configured,
		ClientID:   st.ClientID,
		BaseURL:    st.BaseURL,
	})
}

// HandlePost stores the caller's Mapp credentials.
//
//	@Summary		Save credentials
//	@Description	Encrypts and stores Mapp API client credentials for the caller, replacing any existing ones.
//	@Tags			Settings
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatewaysdk.SaveSettingsRequest	true	"Mapp API client credentials"
//	@Success		200		{object}	gatewaysdk.MutationResponse		"Saved; clientId is masked"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse		"Invalid body, missing fields or unsupported baseUrl"
//	@Failure		401		{object}	gatewaysdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	gatewaysdk.ErrorResponse		"Credential store unavailable"
//	@Router			/api/settings [post].
func (h *SettingsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req gatewaysdk.SaveSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	masked, err := h.SettingsService.Save(ctx, id, service.CredentialInput{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		BaseURL:      req.BaseURL,
	})
	if err != nil {
		writeCredentialError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.MutationResponse{
		Success:  true,
		Message:  msgSaved,
		ClientID: masked,
	})
}

// HandleDelete removes the caller's Mapp credentials.
//
//	@Summary		Delete credentials
//	@Description	Removes the caller's stored Mapp credentials. Deleting when nothing is stored succeeds.
//	@Tags			Settings
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.MutationResponse	"Deleted"
//	@Failure		401	{object}	gatewaysdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	gatewaysdk.ErrorResponse	"Credential store unavailable"
//	@Router			/api/settings [delete].
func (h *SettingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.SettingsService.Delete(ctx, id); err != nil {
		slogx.FromContext(ctx).Error("failed to delete credentials", "err", err)
		gatewaysdk.WriteError(w, http.StatusInternalServerError, msgStoreFailure)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.MutationResponse{
		Success: true,
		Message: msgDeleted,
	})
}

// writeCredentialError maps settings and setup failures to responses.
func writeCredentialError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrMissingSessionToken),
		errors.Is(err, domain.ErrBaseURL):
		gatewaysdk.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrSessionNoSubject):
		gatewaysdk.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrSetupNotConfigured):
		slogx.FromContext(r.Context()).Error("setup called without an action secret")
		gatewaysdk.WriteError(w, http.StatusInternalServerError, err.Error())
	default:
		slogx.FromContext(r.Context()).Error("failed to save credentials", "err", err)
		gatewaysdk.WriteError(w, http.StatusInternalServerError, msgStoreFailure)
	}
}
