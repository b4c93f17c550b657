// Package keystore implements the wallet's secure credential store: named
// secret records sealed with AES-GCM, persisted in sqlite, and gated by
// accessibility policies modeled on platform keychain semantics.
//
// The exported Store fails closed: operations report success/absence via
// booleans and nil results, never errors or panics, and log every failure.
// Raw secret bytes live only inside the store; callers hold service names.
package keystore

import (
	"context"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/cryptox"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
)

// Record is a decrypted secret returned by Get.
type Record struct {
	Account string
	Secret  string
}

// Store is the secure key-value store facade used by the PIN authenticator
// and the token service.
type Store interface {
	// Set seals and persists a secret under the given service name,
	// replacing any previous record. Returns false on any failure.
	Set(ctx context.Context, service, account, secret string, policy Accessibility) bool

	// Get returns the decrypted record for service, or nil when the record
	// is absent, the accessibility policy is not satisfied, or any
	// storage/crypto step fails.
	Get(ctx context.Context, service string) *Record

	// Clear removes the record for service. Returns false on failure;
	// clearing an absent record succeeds.
	Clear(ctx context.Context, service string) bool
}

type sqliteStore struct {
	repo  *repository
	key   []byte
	state DeviceState
	log   logging.Logger
}

// New constructs a Store over db. The sealing key must be a valid AES key
// (32 bytes for AES-256); derive it with cryptox.DeriveStoreKey.
func New(db dbx.DBTX, sealingKey []byte, state DeviceState, log logging.Logger) Store {
	if state == nil {
		state = AlwaysUnlocked{}
	}
	return &sqliteStore{
		repo:  newRepository(db),
		key:   sealingKey,
		state: state,
		log:   log.With("component", "keystore"),
	}
}

func (s *sqliteStore) Set(ctx context.Context, service, account, secret string, policy Accessibility) bool {
	value, nonce, err := cryptox.Seal([]byte(secret), s.key)
	if err != nil {
		s.log.Error(ctx, "failed to seal secret", "service", service, "err", err)
		return false
	}
	rec := &row{Service: service, Account: account, Value: value, Nonce: nonce, Policy: policy}
	if err := s.repo.set(ctx, rec); err != nil {
		s.log.Error(ctx, "failed to store secret", "service", service, "err", err)
		return false
	}
	return true
}

func (s *sqliteStore) Get(ctx context.Context, service string) *Record {
	rec, err := s.repo.get(ctx, service)
	if err != nil {
		s.log.Error(ctx, "failed to read secret", "service", service, "err", err)
		return nil
	}
	if rec == nil {
		return nil
	}
	if !s.accessible(ctx, rec.Policy) {
		s.log.Warn(ctx, "secret access denied by policy",
			"service", service, "policy", rec.Policy.String())
		return nil
	}
	secret, err := cryptox.Open(rec.Value, rec.Nonce, s.key)
	if err != nil {
		s.log.Error(ctx, "failed to unseal secret", "service", service, "err", err)
		return nil
	}
	return &Record{Account: rec.Account, Secret: string(secret)}
}

func (s *sqliteStore) Clear(ctx context.Context, service string) bool {
	if err := s.repo.delete(ctx, service); err != nil {
		s.log.Error(ctx, "failed to clear secret", "service", service, "err", err)
		return false
	}
	return true
}

func (s *sqliteStore) accessible(ctx context.Context, policy Accessibility) bool {
	switch policy {
	case AccessibleWhenUnlocked:
		return s.state.Unlocked(ctx)
	case AccessibleWithAuthentication:
		return s.state.Unlocked(ctx) && s.state.UserPresent(ctx)
	default:
		return false
	}
}
