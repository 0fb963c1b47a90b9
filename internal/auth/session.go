package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookieName  = "inkwell_access"
	RefreshCookieName = "inkwell_refresh"
)

type CookieConfig struct {
	Path          string
	Domain        string
	Secure        bool
	SameSite      http.SameSite
	AccessMaxAge  int
	RefreshMaxAge int
}

// SessionStore reads and writes the token pair on one transport channel.
// The active channel is chosen at the call site, never auto-detected.
type SessionStore interface {
	Access() (string, bool)
	Refresh() (string, bool)
	SetPair(pair Pair)
	Clear()
}

// CookieStore keeps the pair in two HTTP-only cookies so the browser attaches
// credentials on server-rendered page navigation. The cookies expire
// independently, each with Max-Age matching its own token's TTL.
type CookieStore struct {
	c   *gin.Context
	cfg CookieConfig
}

func NewCookieStore(c *gin.Context, cfg CookieConfig) *CookieStore {
	return &CookieStore{c: c, cfg: cfg}
}

func (s *CookieStore) Access() (string, bool) {
	value, err := s.c.Cookie(AccessCookieName)
	return value, err == nil && value != ""
}

func (s *CookieStore) Refresh() (string, bool) {
	value, err := s.c.Cookie(RefreshCookieName)
	return value, err == nil && value != ""
}

func (s *CookieStore) SetPair(pair Pair) {
	s.c.SetSameSite(s.cfg.SameSite)
	s.c.SetCookie(AccessCookieName, pair.AccessToken, s.cfg.AccessMaxAge, s.cfg.Path, s.cfg.Domain, s.cfg.Secure, true)
	s.c.SetCookie(RefreshCookieName, pair.RefreshToken, s.cfg.RefreshMaxAge, s.cfg.Path, s.cfg.Domain, s.cfg.Secure, true)
}

func (s *CookieStore) Clear() {
	s.c.SetSameSite(s.cfg.SameSite)
	s.c.SetCookie(AccessCookieName, "", -1, s.cfg.Path, s.cfg.Domain, s.cfg.Secure, true)
	s.c.SetCookie(RefreshCookieName, "", -1, s.cfg.Path, s.cfg.Domain, s.cfg.Secure, true)
}

// BearerStore reads the access token from an Authorization header. It is
// stateless: API clients hold their own tokens, so writes are no-ops and
// there is no refresh token on this channel.
type BearerStore struct {
	token string
}

func NewBearerStore(r *http.Request) *BearerStore {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return &BearerStore{}
	}
	return &BearerStore{token: strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))}
}

func (s *BearerStore) Access() (string, bool) {
	return s.token, s.token != ""
}

func (s *BearerStore) Refresh() (string, bool) {
	return "", false
}

func (s *BearerStore) SetPair(pair Pair) {}

func (s *BearerStore) Clear() {}
