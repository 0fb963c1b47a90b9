package auth

import (
	"time"

	"github.com/inkwell/backend/internal/model"
)

// Pair is one session: the access/refresh tokens held by a single client.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints token pairs from user records. It persists nothing.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (i *Issuer) Issue(user *model.User) (Pair, error) {
	role := Role(user.Role)
	if role == "" {
		role = RoleUser
	}

	base := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
	}

	access := base
	access.Kind = KindAccess
	accessToken, err := i.codec.Sign(access, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}

	refresh := base
	refresh.Kind = KindRefresh
	refreshToken, err := i.codec.Sign(refresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}
