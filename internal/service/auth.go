package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/model"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("auth config invalid")
)

type UserStore interface {
	CreateUser(ctx context.Context, username, email, role, passwordHash string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

// AuthService verifies credentials and manages the token-pair lifecycle.
// Sessions are fully client-held: logout clears cookies and nothing else, so
// a captured, unexpired token stays valid until its natural expiry. That is
// a documented limitation, not something this service compensates for.
type AuthService struct {
	store       UserStore
	codec       *auth.Codec
	issuer      *auth.Issuer
	allowSignup bool
	cookieCfg   auth.CookieConfig
}

func NewAuthService(store UserStore, cfg config.AuthConfig) (*AuthService, error) {
	codec, err := auth.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.JWTRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	allowSignup, err := parseBool(cfg.AllowSignup, false)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ALLOW_SIGNUP", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		store:       store,
		codec:       codec,
		issuer:      auth.NewIssuer(codec, accessTTL, refreshTTL),
		allowSignup: allowSignup,
		cookieCfg: auth.CookieConfig{
			Path:          cookiePath,
			Domain:        cfg.CookieDomain,
			Secure:        cookieSecure,
			SameSite:      cookieSameSite,
			AccessMaxAge:  int(accessTTL.Seconds()),
			RefreshMaxAge: int(refreshTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) Codec() *auth.Codec {
	return s.codec
}

func (s *AuthService) CookieConfig() auth.CookieConfig {
	return s.cookieCfg
}

func (s *AuthService) AllowSignup() bool {
	return s.allowSignup
}

func (s *AuthService) ExpiresIn() int64 {
	return int64(s.issuer.AccessTTL().Seconds())
}

// EnsureAdmin bootstraps the ADMIN account from env at startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_USERNAME/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	if err := validateCredentials(username, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.store.CreateUser(ctx, username, email, string(auth.RoleAdmin), string(hash))
	return err
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (auth.Pair, *model.User, error) {
	if !s.allowSignup {
		return auth.Pair{}, nil, ErrForbidden
	}

	if err := validateCredentials(username, password); err != nil {
		return auth.Pair{}, nil, err
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || len(email) > 254 {
		return auth.Pair{}, nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return auth.Pair{}, nil, err
	}

	user, err := s.store.CreateUser(ctx, username, email, string(auth.RoleUser), string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return auth.Pair{}, nil, ErrConflict
		}
		return auth.Pair{}, nil, err
	}

	pair, err := s.issuer.Issue(user)
	if err != nil {
		return auth.Pair{}, nil, err
	}
	return pair, user, nil
}

// Login accepts a username or an email as the identifier. A missing user and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (auth.Pair, *model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.store.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if db.IsNoRows(err) {
			return auth.Pair{}, nil, ErrUnauthorized
		}
		return auth.Pair{}, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	pair, err := s.issuer.Issue(user)
	if err != nil {
		return auth.Pair{}, nil, err
	}
	return pair, user, nil
}

// Refresh exchanges a valid refresh-kind token for a fresh pair. The user is
// re-read so a deleted account cannot keep refreshing. There is no rotation
// and no revocation list; the old refresh token stays usable until expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, *model.User, error) {
	claims, err := s.codec.VerifyKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return auth.Pair{}, nil, ErrUnauthorized
		}
		return auth.Pair{}, nil, err
	}

	pair, err := s.issuer.Issue(user)
	if err != nil {
		return auth.Pair{}, nil, err
	}
	return pair, user, nil
}

func validateCredentials(username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if len(username) < minUsernameLength || len(username) > 64 {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > 128 {
		return ErrInvalidInput
	}
	return nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidInput
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
