package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/service"
)

const oidcStateCookie = "inkwell_oidc_state"

type OIDCHandler struct {
	svc       *service.OIDCService
	authSvc   *service.AuthService
	successTo string
}

func NewOIDCHandler(svc *service.OIDCService, authSvc *service.AuthService) *OIDCHandler {
	return &OIDCHandler{svc: svc, authSvc: authSvc, successTo: "/"}
}

// Login godoc
// @Summary Start OIDC sign-in
// @Description Redirects to the configured identity provider.
// @Tags auth
// @Success 302
// @Router /api/v1/auth/oidc/login [get]
func (h *OIDCHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	cfg := h.authSvc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(oidcStateCookie, state, 600, cfg.Path, cfg.Domain, cfg.Secure, true)
	c.Redirect(http.StatusFound, h.svc.AuthCodeURL(state))
}

// Callback godoc
// @Summary OIDC redirect URI
// @Description Verifies the ID token, maps the identity to a local user and
// @Description sets the session cookies.
// @Tags auth
// @Success 302
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/oidc/callback [get]
func (h *OIDCHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(oidcStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "state mismatch"})
		return
	}

	cfg := h.authSvc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(oidcStateCookie, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)

	pair, _, err := h.svc.HandleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeAuthError(c, err)
		return
	}

	auth.NewCookieStore(c, cfg).SetPair(pair)
	c.Redirect(http.StatusFound, h.successTo)
}
