// Package token persists the provider token pair and the cached user
// profile in the secure store, under separate namespaces with different
// accessibility policies.
package token

import (
	"context"
	"encoding/json"
	"time"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/keystore"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
)

const (
	// tokenService holds the access/refresh pair; reads require user
	// presence (biometric or passcode).
	tokenService = "doc-wallet.auth.tokens"

	// profileService caches the last-known profile so it can be shown
	// before (or without) a provider round-trip; readable while unlocked.
	profileService = "doc-wallet.auth.profile"

	account = "oauth"
)

// Service stores and validates token pairs and the cached profile.
type Service struct {
	store keystore.Store
	log   logging.Logger
	now   func() time.Time
}

func NewService(store keystore.Store, log logging.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With("component", "token"),
		now:   time.Now,
	}
}

// StoreTokens persists the pair under the stronger accessibility policy.
func (s *Service) StoreTokens(ctx context.Context, pair *models.TokenPair) bool {
	if pair == nil {
		return false
	}
	data, err := json.Marshal(pair)
	if err != nil {
		s.log.Error(ctx, "failed to encode token pair", "err", err)
		return false
	}
	return s.store.Set(ctx, tokenService, account, string(data), keystore.AccessibleWithAuthentication)
}

// Tokens returns the stored pair, or nil when absent or unreadable.
func (s *Service) Tokens(ctx context.Context) *models.TokenPair {
	rec := s.store.Get(ctx, tokenService)
	if rec == nil {
		return nil
	}
	var pair models.TokenPair
	if err := json.Unmarshal([]byte(rec.Secret), &pair); err != nil {
		s.log.Error(ctx, "failed to decode token pair", "err", err)
		return nil
	}
	return &pair
}

// ClearTokens removes the stored pair.
func (s *Service) ClearTokens(ctx context.Context) bool {
	return s.store.Clear(ctx, tokenService)
}

// Valid reports whether a stored pair exists and its access token is still
// usable under the freshness buffer.
func (s *Service) Valid(ctx context.Context) bool {
	return s.Tokens(ctx).Valid(s.now())
}

// StoreProfile caches the user profile under the weaker policy. Only id,
// name, and email are part of the profile type; provider extras such as the
// photo URL never reach the store.
func (s *Service) StoreProfile(ctx context.Context, user *models.User) bool {
	if user == nil {
		return false
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.log.Error(ctx, "failed to encode profile", "err", err)
		return false
	}
	return s.store.Set(ctx, profileService, account, string(data), keystore.AccessibleWhenUnlocked)
}

// Profile returns the cached user profile, or nil when absent or unreadable.
func (s *Service) Profile(ctx context.Context) *models.User {
	rec := s.store.Get(ctx, profileService)
	if rec == nil {
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(rec.Secret), &user); err != nil {
		s.log.Error(ctx, "failed to decode profile", "err", err)
		return nil
	}
	return &user
}

// ClearProfile removes the cached profile.
func (s *Service) ClearProfile(ctx context.Context) bool {
	return s.store.Clear(ctx, profileService)
}
