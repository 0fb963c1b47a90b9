package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/model"
	"github.com/inkwell/backend/internal/service"
)

type AuthHandler struct {
	svc         *service.AuthService
	oidcEnabled bool
}

func NewAuthHandler(svc *service.AuthService, oidcEnabled bool) *AuthHandler {
	return &AuthHandler{svc: svc, oidcEnabled: oidcEnabled}
}

// Register godoc
// @Summary Register a new user
// @Description Sign up when ALLOW_SIGNUP is true. Behaves like login on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Username, email and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.writeSession(c, pair, user)
}

// Login godoc
// @Summary Login with username or email
// @Description Invalid identifier and wrong password are indistinguishable.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Identifier and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, user, err := h.svc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.writeSession(c, pair, user)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new pair
// @Description Takes the refresh token from the session cookie or the JSON body.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest false "Refresh token (optional when the cookie is present)"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(auth.RefreshCookieName)
	if refreshToken == "" {
		var req model.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	pair, user, err := h.svc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.writeSession(c, pair, user)
}

// Logout godoc
// @Summary Logout
// @Description Clears both session cookies. Stateless on the server: issued
// @Description tokens stay valid until their natural expiry.
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthLogoutResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	auth.NewCookieStore(c, h.svc.CookieConfig()).Clear()
	c.JSON(http.StatusOK, model.AuthLogoutResponse{Status: "logged_out"})
}

// Me godoc
// @Summary Get current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := GetIdentity(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.AuthMeResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     string(claims.Role),
	})
}

// Config godoc
// @Summary Get auth config
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthConfigResponse
// @Router /api/v1/auth/config [get]
func (h *AuthHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, model.AuthConfigResponse{
		AllowSignup: h.svc.AllowSignup(),
		OIDCEnabled: h.oidcEnabled,
	})
}

func (h *AuthHandler) writeSession(c *gin.Context, pair auth.Pair, user *model.User) {
	auth.NewCookieStore(c, h.svc.CookieConfig()).SetPair(pair)
	c.JSON(http.StatusOK, model.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    h.svc.ExpiresIn(),
		User: model.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

func writeAuthError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case service.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case service.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "signup disabled"})
	case service.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
