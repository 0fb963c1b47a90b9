package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/model"
)

func newTestIssuer(t *testing.T) (*auth.Codec, *auth.Issuer) {
	t.Helper()
	codec, err := auth.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec, auth.NewIssuer(codec, time.Hour, 24*time.Hour)
}

func newExpiringIssuer(t *testing.T, codec *auth.Codec, accessTTL time.Duration) *auth.Issuer {
	t.Helper()
	return auth.NewIssuer(codec, accessTTL, 24*time.Hour)
}

func bearerRouter(codec *auth.Codec, role auth.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("", BearerAuth(codec))
	if role != "" {
		group = router.Group("", BearerAuth(codec), RequireRole(role))
	}
	group.GET("/resource", func(c *gin.Context) {
		claims := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return router
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	codec, issuer := newTestIssuer(t)
	pair, err := issuer.Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	router := bearerRouter(codec, "")
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["username"] != "margo" {
		t.Fatalf("identity not propagated: %v", body)
	}
}

func TestBearerAuthRejections(t *testing.T) {
	codec, issuer := newTestIssuer(t)
	pair, err := issuer.Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expiredPair, err := newExpiringIssuer(t, codec, -time.Second).Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing-header", ""},
		{"malformed-token", "Bearer garbage"},
		{"expired-token", "Bearer " + expiredPair.AccessToken},
		{"refresh-kind-token", "Bearer " + pair.RefreshToken},
	}

	router := bearerRouter(codec, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRoleForbidsWrongRole(t *testing.T) {
	codec, issuer := newTestIssuer(t)
	router := bearerRouter(codec, auth.RoleAdmin)

	userPair, err := issuer.Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	adminPair, err := issuer.Issue(&model.User{ID: 2, Username: "root", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+userPair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("USER on admin route: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+adminPair.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ADMIN on admin route: status = %d, want 200", rec.Code)
	}
}

type staticReissuer struct {
	pair  auth.Pair
	calls int
}

func (s *staticReissuer) Reissue(ctx context.Context, refreshToken string) (auth.Pair, error) {
	s.calls++
	return s.pair, nil
}

func cookieRouter(refresher *auth.Refresher, cfg auth.CookieConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	web := router.Group("/web", CookieAuth(refresher, cfg))
	web.GET("/me", func(c *gin.Context) {
		claims := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return router
}

func TestCookieAuthValidSession(t *testing.T) {
	codec, issuer := newTestIssuer(t)
	pair, err := issuer.Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	reissuer := &staticReissuer{}
	router := cookieRouter(auth.NewRefresher(codec, reissuer), auth.CookieConfig{Path: "/"})

	req := httptest.NewRequest(http.MethodGet, "/web/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: pair.AccessToken})
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if reissuer.calls != 0 {
		t.Fatalf("valid session must not hit the reissue endpoint")
	}
}

func TestCookieAuthRefreshesExpiredSession(t *testing.T) {
	codec, issuer := newTestIssuer(t)
	expired, err := newExpiringIssuer(t, codec, -time.Second).Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	fresh, err := issuer.Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	reissuer := &staticReissuer{pair: fresh}
	router := cookieRouter(auth.NewRefresher(codec, reissuer), auth.CookieConfig{Path: "/", AccessMaxAge: 3600, RefreshMaxAge: 86400})

	req := httptest.NewRequest(http.MethodGet, "/web/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: expired.AccessToken})
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: expired.RefreshToken})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if reissuer.calls != 1 {
		t.Fatalf("reissue calls = %d, want 1", reissuer.calls)
	}

	// the refreshed pair rides back on the response cookies
	var gotAccess string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.AccessCookieName {
			gotAccess = cookie.Value
		}
	}
	if gotAccess != fresh.AccessToken {
		t.Fatalf("refreshed access cookie not set")
	}
}

func TestCookieAuthTerminalSession(t *testing.T) {
	codec, _ := newTestIssuer(t)
	dead, err := auth.NewIssuer(codec, -time.Hour, -time.Second).Issue(&model.User{ID: 1, Username: "margo", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	reissuer := &staticReissuer{}
	router := cookieRouter(auth.NewRefresher(codec, reissuer), auth.CookieConfig{Path: "/"})

	req := httptest.NewRequest(http.MethodGet, "/web/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: dead.AccessToken})
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: dead.RefreshToken})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if reissuer.calls != 0 {
		t.Fatalf("expired refresh token must not be sent to the reissue endpoint")
	}
}
