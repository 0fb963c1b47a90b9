package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell/backend/internal/model"
)

type memStore struct {
	access   string
	refresh  string
	setCalls int
}

func (s *memStore) Access() (string, bool)  { return s.access, s.access != "" }
func (s *memStore) Refresh() (string, bool) { return s.refresh, s.refresh != "" }

func (s *memStore) SetPair(pair Pair) {
	s.access = pair.AccessToken
	s.refresh = pair.RefreshToken
	s.setCalls++
}

func (s *memStore) Clear() {
	s.access = ""
	s.refresh = ""
}

type fakeReissuer struct {
	pair  Pair
	err   error
	calls int
}

func (f *fakeReissuer) Reissue(ctx context.Context, refreshToken string) (Pair, error) {
	f.calls++
	return f.pair, f.err
}

func testSession(t *testing.T, codec *Codec, accessTTL, refreshTTL time.Duration) Pair {
	t.Helper()
	issuer := NewIssuer(codec, accessTTL, refreshTTL)
	pair, err := issuer.Issue(&model.User{ID: 9, Username: "iris", Role: "USER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pair
}

func TestAuthenticateValidPassesThrough(t *testing.T) {
	codec := newTestCodec(t)
	pair := testSession(t, codec, time.Hour, 24*time.Hour)
	store := &memStore{access: pair.AccessToken, refresh: pair.RefreshToken}
	reissuer := &fakeReissuer{}

	refresher := NewRefresher(codec, reissuer)
	claims, err := refresher.Authenticate(context.Background(), store)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.UserID != 9 {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if reissuer.calls != 0 {
		t.Fatalf("reissuer called %d times for a valid token", reissuer.calls)
	}
	if store.setCalls != 0 {
		t.Fatalf("store written %d times for a valid token", store.setCalls)
	}
}

func TestAuthenticateIdempotent(t *testing.T) {
	codec := newTestCodec(t)
	pair := testSession(t, codec, time.Hour, 24*time.Hour)
	store := &memStore{access: pair.AccessToken, refresh: pair.RefreshToken}

	refresher := NewRefresher(codec, &fakeReissuer{})
	first, err := refresher.Authenticate(context.Background(), store)
	if err != nil {
		t.Fatalf("first Authenticate: %v", err)
	}
	second, err := refresher.Authenticate(context.Background(), store)
	if err != nil {
		t.Fatalf("second Authenticate: %v", err)
	}
	if first.UserID != second.UserID || first.Username != second.Username {
		t.Fatalf("identities differ: %+v vs %+v", first, second)
	}
	if store.setCalls != 0 {
		t.Fatalf("expected no side effects, store written %d times", store.setCalls)
	}
}

func TestAuthenticateRefreshesExpiredAccess(t *testing.T) {
	codec := newTestCodec(t)
	expired := testSession(t, codec, -time.Second, 24*time.Hour)
	fresh := testSession(t, codec, time.Hour, 24*time.Hour)
	store := &memStore{access: expired.AccessToken, refresh: expired.RefreshToken}
	reissuer := &fakeReissuer{pair: fresh}

	refresher := NewRefresher(codec, reissuer)
	claims, err := refresher.Authenticate(context.Background(), store)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.UserID != 9 {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if reissuer.calls != 1 {
		t.Fatalf("reissuer calls = %d, want 1", reissuer.calls)
	}
	if store.access != fresh.AccessToken || store.refresh != fresh.RefreshToken {
		t.Fatalf("new pair not written back")
	}
}

func TestAuthenticateTerminalWhenRefreshExpired(t *testing.T) {
	codec := newTestCodec(t)
	dead := testSession(t, codec, -time.Hour, -time.Second)
	store := &memStore{access: dead.AccessToken, refresh: dead.RefreshToken}
	reissuer := &fakeReissuer{}

	refresher := NewRefresher(codec, reissuer)
	if _, err := refresher.Authenticate(context.Background(), store); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if reissuer.calls != 0 {
		t.Fatalf("reissuer should not be called with an expired refresh token")
	}
}

func TestAuthenticateTerminalWhenReissueFails(t *testing.T) {
	codec := newTestCodec(t)
	expired := testSession(t, codec, -time.Second, 24*time.Hour)
	store := &memStore{access: expired.AccessToken, refresh: expired.RefreshToken}
	reissuer := &fakeReissuer{err: errors.New("boom")}

	refresher := NewRefresher(codec, reissuer)
	if _, err := refresher.Authenticate(context.Background(), store); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if reissuer.calls != 1 {
		t.Fatalf("reissuer calls = %d, want 1", reissuer.calls)
	}
}

func TestAuthenticateRetriesExactlyOnce(t *testing.T) {
	codec := newTestCodec(t)
	expired := testSession(t, codec, -time.Second, 24*time.Hour)
	// the reissue endpoint hands back another already-expired pair
	stillExpired := testSession(t, codec, -time.Second, 24*time.Hour)
	store := &memStore{access: expired.AccessToken, refresh: expired.RefreshToken}
	reissuer := &fakeReissuer{pair: stillExpired}

	refresher := NewRefresher(codec, reissuer)
	if _, err := refresher.Authenticate(context.Background(), store); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if reissuer.calls != 1 {
		t.Fatalf("reissuer calls = %d, want exactly 1", reissuer.calls)
	}
}

func TestAuthenticateMalformedAccessIsNotRefreshed(t *testing.T) {
	codec := newTestCodec(t)
	pair := testSession(t, codec, time.Hour, 24*time.Hour)
	store := &memStore{access: "garbage", refresh: pair.RefreshToken}
	reissuer := &fakeReissuer{}

	refresher := NewRefresher(codec, reissuer)
	if _, err := refresher.Authenticate(context.Background(), store); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
	if reissuer.calls != 0 {
		t.Fatalf("malformed access token must not trigger a refresh")
	}
}

func TestAuthenticateRejectsRefreshKindAsAccess(t *testing.T) {
	codec := newTestCodec(t)
	pair := testSession(t, codec, time.Hour, 24*time.Hour)
	// a valid refresh token presented on the access channel
	store := &memStore{access: pair.RefreshToken, refresh: pair.RefreshToken}

	refresher := NewRefresher(codec, &fakeReissuer{})
	if _, err := refresher.Authenticate(context.Background(), store); !errors.Is(err, ErrTokenKindMismatch) {
		t.Fatalf("expected ErrTokenKindMismatch, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	codec := newTestCodec(t)
	valid := testSession(t, codec, time.Hour, 24*time.Hour)
	expiredAccess := testSession(t, codec, -time.Second, 24*time.Hour)
	dead := testSession(t, codec, -time.Hour, -time.Second)

	refresher := NewRefresher(codec, &fakeReissuer{})

	tests := []struct {
		name    string
		access  string
		refresh string
		want    SessionState
	}{
		{"valid", valid.AccessToken, valid.RefreshToken, StateValid},
		{"expired-refreshable", expiredAccess.AccessToken, expiredAccess.RefreshToken, StateExpiredRefreshable},
		{"both-expired", dead.AccessToken, dead.RefreshToken, StateExpiredTerminal},
		{"missing-refresh", expiredAccess.AccessToken, "", StateExpiredTerminal},
		{"malformed-access", "garbage", valid.RefreshToken, StateExpiredTerminal},
		{"refresh-kind-as-access", valid.RefreshToken, valid.RefreshToken, StateExpiredTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refresher.Classify(tt.access, tt.refresh); got != tt.want {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
