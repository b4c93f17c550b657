// Package auth contains the orchestrator that picks the preferred
// authentication method and dispatches to the PIN, biometric, and federated
// authenticators behind a uniform contract.
package auth

import (
	"context"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/federated"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
)

// Credentials carries method-specific input for Authenticate.
type Credentials struct {
	PIN string
}

// PINAuthenticator is the local PIN surface the orchestrator needs.
type PINAuthenticator interface {
	Create(ctx context.Context, pin string) bool
	Verify(ctx context.Context, pin string) bool
	IsSet(ctx context.Context) bool
}

// BiometricAuthenticator is the platform biometric surface.
type BiometricAuthenticator interface {
	Available(ctx context.Context) bool
	Authenticate(ctx context.Context, promptMessage string) bool
}

// FederatedAuthenticator is the provider sign-in surface.
type FederatedAuthenticator interface {
	SignIn(ctx context.Context) (*federated.SignInResult, error)
}

// ProfileCache reads and writes the locally cached user profile.
type ProfileCache interface {
	Profile(ctx context.Context) *models.User
	StoreProfile(ctx context.Context, user *models.User) bool
}

// Orchestrator resolves and executes authentication methods. Authenticator
// failures are absorbed into nil results; only the missing-PIN precondition
// propagates as an error.
type Orchestrator struct {
	pin      PINAuthenticator
	bio      BiometricAuthenticator
	fed      FederatedAuthenticator
	profiles ProfileCache
	log      logging.Logger
}

func NewOrchestrator(pin PINAuthenticator, bio BiometricAuthenticator, fed FederatedAuthenticator, profiles ProfileCache, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		pin:      pin,
		bio:      bio,
		fed:      fed,
		profiles: profiles,
		log:      log.With("component", "auth"),
	}
}

// PreferredMethod resolves the method to offer, in priority order:
// biometric when available, else PIN when one is set, else federated
// sign-in. The biometric branch short-circuits: the PIN record is not
// queried when biometrics are available.
func (o *Orchestrator) PreferredMethod(ctx context.Context) models.Method {
	if o.bio.Available(ctx) {
		o.log.Debug(ctx, "preferred method resolved", "method", models.MethodBiometric)
		return models.MethodBiometric
	}
	if o.pin.IsSet(ctx) {
		o.log.Debug(ctx, "preferred method resolved", "method", models.MethodPIN)
		return models.MethodPIN
	}
	o.log.Debug(ctx, "preferred method resolved", "method", models.MethodGoogle)
	return models.MethodGoogle
}

// Authenticate runs the given method. A nil user with a nil error means the
// method failed; the caller decides whether to fall back. The only
// propagated error is ErrPINRequired, a caller-contract violation.
func (o *Orchestrator) Authenticate(ctx context.Context, method models.Method, cred Credentials) (*models.User, error) {
	switch method {
	case models.MethodBiometric:
		if !o.bio.Authenticate(ctx, "Unlock your wallet") {
			return nil, nil
		}
		// The biometric challenge proves possession of the device, not
		// identity; identity comes from the cached profile.
		user := o.profiles.Profile(ctx)
		if user == nil {
			o.log.Warn(ctx, "biometric unlock without a cached profile")
		}
		return user, nil

	case models.MethodPIN:
		if cred.PIN == "" {
			return nil, common.ErrPINRequired
		}
		if !o.pin.Verify(ctx, cred.PIN) {
			return nil, nil
		}
		user := o.profiles.Profile(ctx)
		if user == nil {
			o.log.Warn(ctx, "pin verified without a cached profile")
		}
		return user, nil

	case models.MethodGoogle:
		res, err := o.fed.SignIn(ctx)
		if err != nil {
			o.log.Error(ctx, "federated sign-in failed", "err", err)
			return nil, nil
		}
		if !o.profiles.StoreProfile(ctx, res.User) {
			o.log.Warn(ctx, "profile cache not updated after sign-in")
		}
		return res.User, nil

	default:
		o.log.Warn(ctx, "unknown authentication method", "method", method)
		return nil, nil
	}
}

// SetupPIN creates (or replaces) the local PIN.
func (o *Orchestrator) SetupPIN(ctx context.Context, pin string) bool {
	ok := o.pin.Create(ctx, pin)
	o.log.Info(ctx, "pin setup", "ok", ok)
	return ok
}

// PINSet reports whether a PIN record exists.
func (o *Orchestrator) PINSet(ctx context.Context) bool {
	return o.pin.IsSet(ctx)
}

// BiometricAvailable reports whether the biometric method can be offered.
func (o *Orchestrator) BiometricAvailable(ctx context.Context) bool {
	return o.bio.Available(ctx)
}
