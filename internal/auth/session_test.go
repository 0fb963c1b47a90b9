package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCookieContext(t *testing.T, cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c, rec
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestCookieStoreReadsPair(t *testing.T) {
	c, _ := newCookieContext(t,
		&http.Cookie{Name: AccessCookieName, Value: "access-token"},
		&http.Cookie{Name: RefreshCookieName, Value: "refresh-token"},
	)

	store := NewCookieStore(c, CookieConfig{Path: "/"})
	if got, ok := store.Access(); !ok || got != "access-token" {
		t.Fatalf("Access() = %q, %v", got, ok)
	}
	if got, ok := store.Refresh(); !ok || got != "refresh-token" {
		t.Fatalf("Refresh() = %q, %v", got, ok)
	}
}

func TestCookieStoreMissingCookies(t *testing.T) {
	c, _ := newCookieContext(t)

	store := NewCookieStore(c, CookieConfig{Path: "/"})
	if _, ok := store.Access(); ok {
		t.Fatalf("Access() reported a token on a bare request")
	}
	if _, ok := store.Refresh(); ok {
		t.Fatalf("Refresh() reported a token on a bare request")
	}
}

func TestCookieStoreSetPair(t *testing.T) {
	c, rec := newCookieContext(t)

	cfg := CookieConfig{
		Path:          "/",
		Secure:        true,
		SameSite:      http.SameSiteLaxMode,
		AccessMaxAge:  3600,
		RefreshMaxAge: 604800,
	}
	store := NewCookieStore(c, cfg)
	store.SetPair(Pair{AccessToken: "new-access", RefreshToken: "new-refresh"})

	access := responseCookie(t, rec, AccessCookieName)
	if access.Value != "new-access" || access.MaxAge != 3600 {
		t.Fatalf("access cookie = %+v", access)
	}
	if !access.HttpOnly {
		t.Fatalf("access cookie must be HttpOnly")
	}
	if !access.Secure {
		t.Fatalf("access cookie must be Secure")
	}

	refresh := responseCookie(t, rec, RefreshCookieName)
	if refresh.Value != "new-refresh" || refresh.MaxAge != 604800 {
		t.Fatalf("refresh cookie = %+v", refresh)
	}
	if !refresh.HttpOnly {
		t.Fatalf("refresh cookie must be HttpOnly")
	}
}

func TestCookieStoreClear(t *testing.T) {
	c, rec := newCookieContext(t,
		&http.Cookie{Name: AccessCookieName, Value: "access-token"},
		&http.Cookie{Name: RefreshCookieName, Value: "refresh-token"},
	)

	store := NewCookieStore(c, CookieConfig{Path: "/"})
	store.Clear()

	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		cookie := responseCookie(t, rec, name)
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Fatalf("cookie %q not cleared: %+v", name, cookie)
		}
	}
}

func TestBearerStoreParsesHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"well-formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing", "", "", false},
		{"wrong-scheme", "Basic abc", "", false},
		{"bare-token", "abc.def.ghi", "", false},
		{"empty-token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			store := NewBearerStore(req)
			got, ok := store.Access()
			if got != tt.want || ok != tt.ok {
				t.Fatalf("Access() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBearerStoreHasNoRefreshChannel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")

	store := NewBearerStore(req)
	if _, ok := store.Refresh(); ok {
		t.Fatalf("bearer channel must not expose a refresh token")
	}

	// writes are no-ops; the token the client sent is all there is
	store.SetPair(Pair{AccessToken: "other"})
	if got, _ := store.Access(); got != "abc" {
		t.Fatalf("SetPair mutated a bearer store: %q", got)
	}
}
