package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/auth"
)

const identityKey = "auth_identity"

// BearerAuth authenticates API requests from the Authorization header. Any
// failure (missing, malformed, wrong kind, expired) is the same generic 401;
// bearer clients hold their own tokens and refresh explicitly, so there is
// no silent refresh on this channel.
func BearerAuth(codec *auth.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		store := auth.NewBearerStore(c.Request)
		token, ok := store.Access()
		if !ok {
			unauthorized(c)
			return
		}

		claims, err := codec.VerifyKind(token, auth.KindAccess)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// CookieAuth authenticates server-rendered page requests from the session
// cookies, refreshing an expired access token through the orchestrator at
// most once before giving up.
func CookieAuth(refresher *auth.Refresher, cookieCfg auth.CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := auth.NewCookieStore(c, cookieCfg)
		claims, err := refresher.Authenticate(c.Request.Context(), store)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// RequireRole runs after an authentication middleware and gates the route on
// the role claim. Authenticated with the wrong role is 403, not 401.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetIdentity(c)
		if claims == nil {
			unauthorized(c)
			return
		}
		if claims.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *auth.Claims {
	if value, ok := c.Get(identityKey); ok {
		if claims, ok := value.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	c.Abort()
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
