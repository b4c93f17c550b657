// Package pin implements local PIN authentication: versioned hashing of a
// numeric PIN into the secure store and failed-attempt bookkeeping.
package pin

import (
	"context"
	"strconv"
	"strings"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/keystore"
)

const (
	pinService      = "doc-wallet.auth.pin"
	attemptsService = "doc-wallet.auth.pin.attempts"
	pinAccount      = "local"
)

// MaxAttempts is the intended lockout threshold. Verification is NOT blocked
// once it is reached; the count is logged so the UI layer can warn. Whether
// the threshold should hard-block verification is an open product decision.
const MaxAttempts = 5

// Authenticator creates and verifies the local PIN.
type Authenticator struct {
	store  keystore.Store
	hasher Hasher
	log    logging.Logger
}

// NewAuthenticator builds a PIN authenticator over the secure store. A nil
// hasher selects the legacy v1 scheme for record compatibility.
func NewAuthenticator(store keystore.Store, hasher Hasher, log logging.Logger) *Authenticator {
	if hasher == nil {
		hasher = LegacyHasher{}
	}
	return &Authenticator{
		store:  store,
		hasher: hasher,
		log:    log.With("component", "pin"),
	}
}

// Create hashes the PIN, stores the record, and resets the attempt counter
// to zero. Returns false on any storage failure.
func (a *Authenticator) Create(ctx context.Context, pin string) bool {
	hash, err := a.hasher.Hash(pin)
	if err != nil {
		a.log.Error(ctx, "failed to hash pin", "err", err)
		return false
	}
	if !a.store.Set(ctx, pinService, pinAccount, hash, keystore.AccessibleWhenUnlocked) {
		return false
	}
	if !a.setAttempts(ctx, 0) {
		return false
	}
	a.log.Info(ctx, "pin created", "version", a.hasher.Version())
	return true
}

// Verify compares the PIN against the stored record. A mismatch increments
// the attempt counter; a match resets it to zero and, when the stored record
// uses an older hash version than the configured hasher, rewrites it.
func (a *Authenticator) Verify(ctx context.Context, pin string) bool {
	attempts := a.Attempts(ctx)
	a.log.Debug(ctx, "verifying pin", "attempts", attempts)
	if attempts >= MaxAttempts {
		a.log.Warn(ctx, "pin attempt threshold reached", "attempts", attempts, "max", MaxAttempts)
	}

	rec := a.store.Get(ctx, pinService)
	if rec == nil {
		return false
	}

	ok, err := VerifyHash(rec.Secret, pin)
	if err != nil {
		a.log.Error(ctx, "unverifiable pin record", "err", err)
		return false
	}
	if !ok {
		a.setAttempts(ctx, attempts+1)
		a.log.Warn(ctx, "pin verification failed", "attempts", attempts+1)
		return false
	}

	a.setAttempts(ctx, 0)
	a.upgradeRecord(ctx, rec.Secret, pin)
	return true
}

// IsSet reports whether a PIN record exists.
func (a *Authenticator) IsSet(ctx context.Context) bool {
	return a.store.Get(ctx, pinService) != nil
}

// Attempts returns the current failed-attempt count. Absent or unparseable
// counters read as zero; the stored value is never negative.
func (a *Authenticator) Attempts(ctx context.Context) int {
	rec := a.store.Get(ctx, attemptsService)
	if rec == nil {
		return 0
	}
	n, err := strconv.Atoi(rec.Secret)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (a *Authenticator) setAttempts(ctx context.Context, n int) bool {
	if n < 0 {
		n = 0
	}
	return a.store.Set(ctx, attemptsService, pinAccount, strconv.Itoa(n), keystore.AccessibleWhenUnlocked)
}

// upgradeRecord rewrites a legacy record under the configured hasher after a
// successful verify. Best effort: a failed rewrite keeps the old record.
func (a *Authenticator) upgradeRecord(ctx context.Context, stored, pin string) {
	if strings.HasPrefix(stored, a.hasher.Version()+":") {
		return
	}
	hash, err := a.hasher.Hash(pin)
	if err != nil {
		a.log.Warn(ctx, "pin record upgrade failed", "err", err)
		return
	}
	if !a.store.Set(ctx, pinService, pinAccount, hash, keystore.AccessibleWhenUnlocked) {
		a.log.Warn(ctx, "pin record upgrade not persisted")
		return
	}
	a.log.Info(ctx, "pin record upgraded", "version", a.hasher.Version())
}
