package auth

import (
	"context"
	"errors"
)

// SessionState classifies a session by its codec verdicts alone.
type SessionState int

const (
	// StateValid: the access token verifies; pass through untouched.
	StateValid SessionState = iota
	// StateExpiredRefreshable: the access token expired but the refresh
	// token still verifies; a reissue round trip can save the session.
	StateExpiredRefreshable
	// StateExpiredTerminal: the refresh token is itself invalid or expired;
	// the session is over and the caller must re-authenticate.
	StateExpiredTerminal
)

func (s SessionState) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpiredRefreshable:
		return "expired_refreshable"
	case StateExpiredTerminal:
		return "expired_terminal"
	default:
		return "unknown"
	}
}

var ErrRefreshFailed = errors.New("refresh failed")

// Reissuer exchanges a valid refresh token for a new pair.
type Reissuer interface {
	Reissue(ctx context.Context, refreshToken string) (Pair, error)
}

// Refresher authenticates a session and, when the access token has expired,
// exchanges the refresh token for a new pair at most once per request.
type Refresher struct {
	codec    *Codec
	reissuer Reissuer
}

func NewRefresher(codec *Codec, reissuer Reissuer) *Refresher {
	return &Refresher{codec: codec, reissuer: reissuer}
}

func (r *Refresher) Classify(accessToken, refreshToken string) SessionState {
	_, err := r.codec.VerifyKind(accessToken, KindAccess)
	if err == nil {
		return StateValid
	}
	if !errors.Is(err, ErrTokenExpired) {
		return StateExpiredTerminal
	}
	if _, err := r.codec.VerifyKind(refreshToken, KindRefresh); err != nil {
		return StateExpiredTerminal
	}
	return StateExpiredRefreshable
}

// Authenticate verifies the store's access token. On expiry it calls the
// reissue endpoint with the refresh token, writes the new pair back through
// the store, and re-checks the fresh access token exactly once. Every other
// failure surfaces as a token error or ErrRefreshFailed; there is no second
// retry. Concurrent requests may race to refresh the same expired token;
// each reissued pair is independently valid, so the race is harmless.
func (r *Refresher) Authenticate(ctx context.Context, store SessionStore) (*Claims, error) {
	accessToken, _ := store.Access()
	claims, err := r.codec.VerifyKind(accessToken, KindAccess)
	if err == nil {
		return claims, nil
	}
	if !errors.Is(err, ErrTokenExpired) {
		return nil, err
	}

	refreshToken, ok := store.Refresh()
	if !ok {
		return nil, ErrRefreshFailed
	}
	if _, err := r.codec.VerifyKind(refreshToken, KindRefresh); err != nil {
		return nil, ErrRefreshFailed
	}

	pair, err := r.reissuer.Reissue(ctx, refreshToken)
	if err != nil {
		return nil, ErrRefreshFailed
	}
	store.SetPair(pair)

	claims, err = r.codec.VerifyKind(pair.AccessToken, KindAccess)
	if err != nil {
		return nil, ErrRefreshFailed
	}
	return claims, nil
}
