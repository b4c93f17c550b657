package federated

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/keystore"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/token"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeStore struct {
	records map[string]keystore.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]keystore.Record{}}
}

func (f *fakeStore) Set(_ context.Context, service, account, secret string, _ keystore.Accessibility) bool {
	f.records[service] = keystore.Record{Account: account, Secret: secret}
	return true
}

func (f *fakeStore) Get(_ context.Context, service string) *keystore.Record {
	rec, ok := f.records[service]
	if !ok {
		return nil
	}
	return &rec
}

func (f *fakeStore) Clear(_ context.Context, service string) bool {
	delete(f.records, service)
	return true
}

type fakeFlow struct {
	code string
	err  error
}

func (f *fakeFlow) Authorize(context.Context, *oauth2.Config) (string, error) {
	return f.code, f.err
}

// provider is an httptest-backed identity provider with request recording.
type provider struct {
	srv *httptest.Server

	idToken       string
	refreshToken  string
	tokenStatus   int
	revokeStatus  int
	userStatus    int
	userBody      string
	revokeCalls   int
	lastRevoked string
	lastBearer    string
	preloadHeads  int
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{
		tokenStatus:  http.StatusOK,
		revokeStatus: http.StatusOK,
		userStatus:   http.StatusOK,
		userBody:     `{"sub":"sub-1","name":"Alice","email":"alice@example.com","picture":"https://img"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			p.preloadHeads++
		}
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if p.tokenStatus != http.StatusOK {
			http.Error(w, "denied", p.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"at-new","token_type":"Bearer","expires_in":3600`
		if p.refreshToken != "" {
			body += `,"refresh_token":"` + p.refreshToken + `"`
		}
		if p.idToken != "" {
			body += `,"id_token":"` + p.idToken + `"`
		}
		body += `}`
		io.WriteString(w, body)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		p.revokeCalls++
		_ = r.ParseForm()
		p.lastRevoked = r.Form.Get("token")
		w.WriteHeader(p.revokeStatus)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		p.lastBearer = r.Header.Get("Authorization")
		if p.userStatus != http.StatusOK {
			http.Error(w, "denied", p.userStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, p.userBody)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) config() Config {
	return Config{
		Issuer:       p.srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      p.srv.URL + "/auth",
		TokenURL:     p.srv.URL + "/token",
		RevokeURL:    p.srv.URL + "/revoke",
		UserInfoURL:  p.srv.URL + "/userinfo",
		RedirectURL:  "http://127.0.0.1:1/callback",
	}
}

func signIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func newAuthenticator(t *testing.T, p *provider, flow CodeFlow, tokens *token.Service) *Authenticator {
	t.Helper()
	return NewAuthenticator(p.config(), flow, tokens, p.srv.Client(), testLogger())
}

func freshPair(refresh string) *models.TokenPair {
	return &models.TokenPair{
		AccessToken:  "at-old",
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	}
}

func TestSignIn_Success(t *testing.T) {
	p := newProvider(t)
	p.idToken = signIDToken(t, jwt.MapClaims{
		"sub": "sub-1", "name": "Alice", "email": "alice@example.com",
		"picture": "https://img.example/alice.png",
	})
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{code: "authcode"}, tokens)
	ctx := context.Background()

	res, err := a.SignIn(ctx)
	require.NoError(t, err)
	require.Equal(t, &models.User{ID: "sub-1", Name: "Alice", Email: "alice@example.com"}, res.User)
	require.Equal(t, "at-new", res.Tokens.AccessToken)
	require.Greater(t, res.Tokens.ExpiresAt, time.Now().UnixMilli())

	stored := tokens.Tokens(ctx)
	require.NotNil(t, stored, "pair must be persisted")
	require.Equal(t, res.Tokens, stored)
}

func TestSignIn_FlowFailure(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{err: errors.New("user cancelled")}, tokens)

	_, err := a.SignIn(context.Background())
	require.ErrorIs(t, err, common.ErrSignInFailed)
	require.Nil(t, tokens.Tokens(context.Background()))
}

func TestSignIn_ExchangeFailure(t *testing.T) {
	p := newProvider(t)
	p.tokenStatus = http.StatusUnauthorized
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{code: "authcode"}, tokens)

	_, err := a.SignIn(context.Background())
	require.ErrorIs(t, err, common.ErrSignInFailed)
}

func TestSignIn_MissingIDToken(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{code: "authcode"}, tokens)

	_, err := a.SignIn(context.Background())
	require.ErrorIs(t, err, common.ErrSignInFailed)
}

func TestSignOut_RevokesThenClears(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt")))
	require.NoError(t, a.SignOut(ctx))

	require.Equal(t, 1, p.revokeCalls)
	require.Equal(t, "at-old", p.lastRevoked)
	require.Nil(t, tokens.Tokens(ctx))
}

func TestSignOut_RevocationFailureStillClears(t *testing.T) {
	p := newProvider(t)
	p.revokeStatus = http.StatusInternalServerError
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt")))
	require.NoError(t, a.SignOut(ctx))
	require.Nil(t, tokens.Tokens(ctx), "local tokens must be cleared regardless")
}

func TestSignOut_NoTokensIsNoop(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)

	require.NoError(t, a.SignOut(context.Background()))
	require.Zero(t, p.revokeCalls)
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)

	require.False(t, a.RefreshAccessToken(context.Background()))
}

func TestRefresh_RetainsOldRefreshTokenWhenOmitted(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt-old")))
	require.True(t, a.RefreshAccessToken(ctx))

	pair := tokens.Tokens(ctx)
	require.Equal(t, "at-new", pair.AccessToken)
	require.Equal(t, "rt-old", pair.RefreshToken, "old refresh token kept when provider omits one")
}

func TestRefresh_UsesProviderRefreshTokenWhenPresent(t *testing.T) {
	p := newProvider(t)
	p.refreshToken = "rt-new"
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt-old")))
	require.True(t, a.RefreshAccessToken(ctx))
	require.Equal(t, "rt-new", tokens.Tokens(ctx).RefreshToken)
}

func TestRefresh_ProviderFailure(t *testing.T) {
	p := newProvider(t)
	p.tokenStatus = http.StatusBadRequest
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt")))
	require.False(t, a.RefreshAccessToken(ctx))
}

func TestCurrentUser_Success(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt")))

	user := a.CurrentUser(ctx)
	require.NotNil(t, user)
	require.Equal(t, &models.User{ID: "sub-1", Name: "Alice", Email: "alice@example.com"}, user)
	require.Equal(t, "Bearer at-old", p.lastBearer)
}

func TestCurrentUser_RequiresValidTokens(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.Nil(t, a.CurrentUser(ctx), "no tokens stored")

	expired := &models.TokenPair{AccessToken: "at", ExpiresAt: time.Now().UnixMilli()}
	require.True(t, tokens.StoreTokens(ctx, expired))
	require.Nil(t, a.CurrentUser(ctx), "stale tokens must not be used")
	require.Empty(t, p.lastBearer, "no request may reach the provider")
}

func TestCurrentUser_ProviderRejection(t *testing.T) {
	p := newProvider(t)
	p.userStatus = http.StatusUnauthorized
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	require.True(t, tokens.StoreTokens(ctx, freshPair("rt")))
	require.Nil(t, a.CurrentUser(ctx))
}

func TestPreloadConfig_BestEffort(t *testing.T) {
	p := newProvider(t)
	tokens := token.NewService(newFakeStore(), testLogger())
	a := newAuthenticator(t, p, &fakeFlow{}, tokens)
	ctx := context.Background()

	a.PreloadConfig(ctx)
	require.Equal(t, 1, p.preloadHeads)

	// A dead endpoint must not panic or error.
	cfg := p.config()
	cfg.AuthURL = "http://127.0.0.1:1/auth"
	dead := NewAuthenticator(cfg, &fakeFlow{}, tokens, p.srv.Client(), testLogger())
	dead.PreloadConfig(ctx)
}
