package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Kind string

const (
	KindAccess  Kind = "ACCESS"
	KindRefresh Kind = "REFRESH"
)

var (
	ErrMissingSecret     = errors.New("signing secret is required")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenKindMismatch = errors.New("token kind mismatch")
)

// Claims is the identity payload carried by every token. Kind separates
// access tokens from refresh tokens so one can never stand in for the other.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	Kind     Kind   `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with a process-wide secret.
// Both operations are pure functions over immutable input.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

func (c *Codec) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Subject = fmt.Sprintf("%d", claims.UserID)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature integrity and expiry. No network or disk I/O.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// VerifyKind verifies the token and additionally requires its kind claim to
// match. Callers must treat a mismatch exactly like an invalid token.
func (c *Codec) VerifyKind(tokenStr string, kind Kind) (*Claims, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrTokenKindMismatch
	}
	return claims, nil
}
