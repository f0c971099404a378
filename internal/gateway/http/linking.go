package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/service"
	"github.com/aussiebroadwan/mappmcp/pkg/cryptox"
	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

const (
	settingsPagePath = "/settings"

	msgLoginFailed     = "Login failed"
	msgMissingCode     = "Missing authorization code"
	msgInvalidState    = "Invalid authentication state"
	msgMissingVerifier = "Missing PKCE verifier"
	msgAuthFailed      = "Authentication failed"
)

// LinkHandler runs the browser login that hands the settings page an
// access token.
type LinkHandler struct {
	LinkService *service.LinkService
	baseURL     func(*http.Request) string
}

func (h *LinkHandler) callbackURL(r *http.Request) string {
	return h.baseURL(r) + service.CallbackPath
}

func (h *LinkHandler) secure(r *http.Request) bool {
	return strings.HasPrefix(h.baseURL(r), "https://")
}

// HandleLogin starts a login for the settings page.
//
//	@Summary		Start settings login
//	@Description	Redirects the browser to the identity provider using the authorization code flow with PKCE.
//	@Description	The state and code verifier are kept in short-lived cookies scoped to the callback path.
//	@Tags			Linking
//	@Success		302
//	@Failure		500	{object}	gatewaysdk.ErrorResponse	"Identity provider settings incomplete"
//	@Router			/api/auth/login [get].
func (h *LinkHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.LinkService.Configured() {
		gatewaysdk.WriteError(w, http.StatusInternalServerError, service.ErrLinkNotConfigured.Error())
		return
	}

	sess, err := service.BeginLink()
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to begin login", "err", err)
		gatewaysdk.WriteError(w, http.StatusInternalServerError, msgAuthFailed)
		return
	}

	service.SetLinkCookies(w, sess, h.secure(r))
	http.Redirect(w, r, h.LinkService.AuthorizeURL(h.callbackURL(r), sess), http.StatusFound)
}

// HandleCallback completes a settings login.
//
//	@Summary		Settings login callback
//	@Description	Validates the returned state against the login cookie, exchanges the code with the stored PKCE verifier,
//	@Description	and redirects to /settings with the access token (or an error) in the URL fragment.
//	@Tags			Linking
//	@Param			code				query	string	false	"Authorization code"
//	@Param			state				query	string	false	"State echoed by the provider"
//	@Param			error				query	string	false	"Provider error code"
//	@Param			error_description	query	string	false	"Provider error description"
//	@Success		302
//	@Failure		500	{object}	gatewaysdk.ErrorResponse	"Identity provider settings incomplete"
//	@Router			/api/auth/callback [get].
func (h *LinkHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	expectedState, verifier := service.ReadLinkCookies(r)
	service.ClearLinkCookies(w, h.secure(r))

	if !h.LinkService.CanExchange() {
		gatewaysdk.WriteError(w, http.StatusInternalServerError, service.ErrLinkNotConfigured.Error())
		return
	}

	q := r.URL.Query()
	if q.Get("error") != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = msgLoginFailed
		}
		log.Info("provider returned login error", "error", q.Get("error"))
		h.redirectSettings(w, r, "error", desc)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.redirectSettings(w, r, "error", msgMissingCode)
		return
	}
	if !service.ValidateCallback(q.Get("state"), expectedState, verifier) {
		if verifier == "" && cryptox.TokensEqual(q.Get("state"), expectedState) {
			h.redirectSettings(w, r, "error", msgMissingVerifier)
			return
		}
		log.Warn("login callback state mismatch")
		h.redirectSettings(w, r, "error", msgInvalidState)
		return
	}

	token, err := h.LinkService.Exchange(ctx, code, h.callbackURL(r), verifier)
	if err != nil {
		msg := msgAuthFailed
		if errors.Is(err, service.ErrExchangeFailed) {
			msg = service.ErrExchangeFailed.Error()
		}
		h.redirectSettings(w, r, "error", msg)
		return
	}

	h.redirectSettings(w, r, "access_token", token)
}

// redirectSettings sends the browser to the settings page with key=value in
// the fragment, which never reaches a server log.
func (h *LinkHandler) redirectSettings(w http.ResponseWriter, r *http.Request, key, value string) {
	fragment := key + "=" + strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
	http.Redirect(w, r, h.baseURL(r)+settingsPagePath+"#"+fragment, http.StatusFound)
}
