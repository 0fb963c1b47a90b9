package service

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/model"
)

// OIDCService signs users in through an external OIDC provider and mints the
// same local token pair as password login. Provider identities map to local
// users by verified email; first sign-in creates the account.
type OIDCService struct {
	store    UserStore
	authSvc  *AuthService
	oauthCfg oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewOIDCService(ctx context.Context, store UserStore, authSvc *AuthService, cfg config.OIDCConfig) (*OIDCService, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	return &OIDCService{
		store:   store,
		authSvc: authSvc,
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (s *OIDCService) AuthCodeURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state)
}

func (s *OIDCService) HandleCallback(ctx context.Context, code string) (auth.Pair, *model.User, error) {
	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	var claims struct {
		Email    string `json:"email"`
		Username string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		return auth.Pair{}, nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if !db.IsNoRows(err) {
			return auth.Pair{}, nil, err
		}
		user, err = s.createFromProvider(ctx, claims.Username, claims.Email)
		if err != nil {
			return auth.Pair{}, nil, err
		}
	}

	pair, err := s.authSvc.issuer.Issue(user)
	if err != nil {
		return auth.Pair{}, nil, err
	}
	return pair, user, nil
}

func (s *OIDCService) createFromProvider(ctx context.Context, username, email string) (*model.User, error) {
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	// Provider-managed accounts get an unguessable local password hash so
	// password login stays closed for them.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, username, email, string(auth.RoleUser), string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}
