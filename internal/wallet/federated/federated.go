// Package federated implements OAuth2/OIDC sign-in against a single
// identity provider: the authorization-code flow, token refresh and
// revocation, and profile retrieval from the userinfo endpoint.
//
// The ID token's signature is NOT verified locally: trust rests on the
// TLS-protected code exchange, and the decoded claims serve only as a
// display-profile cache. Access-control decisions must depend on token
// validity, never on decoded claims.
package federated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/token"
)

// Config describes the identity provider. Scopes default to
// "openid profile email".
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// Authenticator runs the federated flows and persists results through the
// token service.
type Authenticator struct {
	cfg    Config
	oauth  *oauth2.Config
	flow   CodeFlow
	tokens *token.Service
	client *http.Client
	log    logging.Logger
}

// SignInResult couples the signed-in user with the persisted token pair.
type SignInResult struct {
	User   *models.User
	Tokens *models.TokenPair
}

func NewAuthenticator(cfg Config, flow CodeFlow, tokens *token.Service, client *http.Client, log logging.Logger) *Authenticator {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "email"}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Authenticator{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		flow:   flow,
		tokens: tokens,
		client: client,
		log:    log.With("component", "federated"),
	}
}

// PreloadConfig warms up the provider connection so the first sign-in is
// faster. Best effort: failures are logged and swallowed.
func (a *Authenticator) PreloadConfig(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.cfg.AuthURL, nil)
	if err != nil {
		a.log.Warn(ctx, "preload request build failed", "err", err)
		return
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn(ctx, "provider preload failed", "err", err)
		return
	}
	resp.Body.Close()
}

// SignIn runs the authorization-code flow, decodes the ID token into a
// profile, persists the token pair, and returns both. Every step failure is
// wrapped into a generic sign-in error.
func (a *Authenticator) SignIn(ctx context.Context) (*SignInResult, error) {
	code, err := a.flow.Authorize(ctx, a.oauth)
	if err != nil {
		return nil, fmt.Errorf("%w: authorization: %v", common.ErrSignInFailed, err)
	}

	tok, err := a.oauth.Exchange(a.httpContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", common.ErrSignInFailed, err)
	}

	user, err := profileFromIDToken(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: id token: %v", common.ErrSignInFailed, err)
	}

	pair := &models.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UnixMilli(),
	}
	if !a.tokens.StoreTokens(ctx, pair) {
		return nil, fmt.Errorf("%w: persisting tokens", common.ErrSignInFailed)
	}

	a.log.Info(ctx, "federated sign-in complete", "sub", user.ID)
	return &SignInResult{User: user, Tokens: pair}, nil
}

// SignOut revokes the access token at the provider and clears the local
// pair. Revocation failures are logged but never block the local clear: the
// user's logout intent wins.
func (a *Authenticator) SignOut(ctx context.Context) error {
	if pair := a.tokens.Tokens(ctx); pair != nil && pair.AccessToken != "" {
		if err := a.revoke(ctx, pair.AccessToken); err != nil {
			a.log.Warn(ctx, "token revocation failed", "err", err)
		}
	}
	if !a.tokens.ClearTokens(ctx) {
		return fmt.Errorf("%w: clearing tokens", common.ErrStorage)
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new pair.
// Returns false when no refresh token exists or the exchange fails. When the
// provider omits a new refresh token, the old one is retained.
func (a *Authenticator) RefreshAccessToken(ctx context.Context) bool {
	pair := a.tokens.Tokens(ctx)
	if pair == nil || pair.RefreshToken == "" {
		a.log.Debug(ctx, "no refresh token", "err", common.ErrNoRefreshToken)
		return false
	}

	src := a.oauth.TokenSource(a.httpContext(ctx), &oauth2.Token{RefreshToken: pair.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		a.log.Warn(ctx, "token refresh failed", "err", fmt.Errorf("%w: %v", common.ErrNetwork, err))
		return false
	}

	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = pair.RefreshToken
	}
	return a.tokens.StoreTokens(ctx, &models.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    tok.Expiry.UnixMilli(),
	})
}

// IsAuthenticated reports whether a fresh token pair is stored.
func (a *Authenticator) IsAuthenticated(ctx context.Context) bool {
	return a.tokens.Valid(ctx)
}

// CurrentUser fetches the provider's userinfo with the stored access token.
// Returns nil when no valid pair exists or on any transport or non-2xx
// failure.
func (a *Authenticator) CurrentUser(ctx context.Context) *models.User {
	if !a.tokens.Valid(ctx) {
		return nil
	}
	pair := a.tokens.Tokens(ctx)
	if pair == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.UserInfoURL, nil)
	if err != nil {
		a.log.Error(ctx, "userinfo request build failed", "err", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn(ctx, "userinfo fetch failed", "err", fmt.Errorf("%w: %v", common.ErrNetwork, err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.Warn(ctx, "userinfo fetch rejected", "status", resp.StatusCode)
		return nil
	}

	var info struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		a.log.Error(ctx, "userinfo decode failed", "err", err)
		return nil
	}
	return &models.User{ID: info.Sub, Name: info.Name, Email: info.Email}
}

func (a *Authenticator) revoke(ctx context.Context, accessToken string) error {
	form := url.Values{
		"token":           {accessToken},
		"token_type_hint": {"access_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.RevokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revocation rejected with status %d", resp.StatusCode)
	}
	return nil
}

// httpContext threads the authenticator's HTTP client into the oauth2
// package for the exchange and refresh calls.
func (a *Authenticator) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

// profileFromIDToken decodes the ID token returned by the code exchange
// without verifying its signature; see the package comment for the trust
// model. The picture claim is decoded but deliberately dropped: only id,
// name, and email are retained.
func profileFromIDToken(tok *oauth2.Token) (*models.User, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("token response without id_token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("id token without sub claim")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	return &models.User{ID: sub, Name: name, Email: email}, nil
}
