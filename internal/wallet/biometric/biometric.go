// Package biometric wraps the platform biometric facility behind a small
// Device interface and applies the wallet's availability and challenge
// policy on top of it.
package biometric

import (
	"context"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
)

// ChallengeOptions configure a platform biometric prompt.
type ChallengeOptions struct {
	PromptMessage string

	// FallbackLabel names the button that switches the prompt to the
	// device passcode.
	FallbackLabel string

	// DisableDeviceFallback, when true, removes the passcode fallback.
	// The wallet keeps it enabled: a passcode-confirmed challenge is an
	// accepted result.
	DisableDeviceFallback bool
}

// Device is the platform bridge: capability queries and the challenge
// itself. Implementations wrap the OS biometric API of their platform.
type Device interface {
	// HardwareAvailable reports whether a biometric sensor exists.
	HardwareAvailable(ctx context.Context) (bool, error)

	// Enrolled reports whether at least one biometric is enrolled.
	Enrolled(ctx context.Context) (bool, error)

	// Challenge presents the platform prompt and reports its outcome.
	Challenge(ctx context.Context, opts ChallengeOptions) (bool, error)
}

// NopDevice is a Device for platforms without a sensor bridge: no hardware,
// every challenge fails.
type NopDevice struct{}

func (NopDevice) HardwareAvailable(context.Context) (bool, error) { return false, nil }
func (NopDevice) Enrolled(context.Context) (bool, error) { return false, nil }
func (NopDevice) Challenge(context.Context, ChallengeOptions) (bool, error) { return false, nil }

// Authenticator applies the wallet's biometric policy over a Device.
type Authenticator struct {
	device Device
	log    logging.Logger
}

func NewAuthenticator(device Device, log logging.Logger) *Authenticator {
	return &Authenticator{device: device, log: log.With("component", "biometric")}
}

// Available reports whether biometric authentication can be offered: the
// hardware capability check AND the enrollment check must both succeed.
// Failures are logged, never propagated.
func (a *Authenticator) Available(ctx context.Context) bool {
	hw, err := a.device.HardwareAvailable(ctx)
	if err != nil {
		a.log.Warn(ctx, "biometric hardware query failed", "err", err)
		return false
	}
	if !hw {
		a.log.Debug(ctx, "no biometric hardware")
		return false
	}

	enrolled, err := a.device.Enrolled(ctx)
	if err != nil {
		a.log.Warn(ctx, "biometric enrollment query failed", "err", err)
		return false
	}
	if !enrolled {
		a.log.Debug(ctx, "no biometrics enrolled")
		return false
	}
	return true
}

// Authenticate presents the platform challenge with the device-passcode
// fallback enabled and returns its boolean outcome. Errors are logged and
// reported as failure.
func (a *Authenticator) Authenticate(ctx context.Context, promptMessage string) bool {
	ok, err := a.device.Challenge(ctx, ChallengeOptions{
		PromptMessage:         promptMessage,
		FallbackLabel:         "Use passcode",
		DisableDeviceFallback: false,
	})
	if err != nil {
		a.log.Warn(ctx, "biometric challenge failed", "err", err)
		return false
	}
	if !ok {
		a.log.Warn(ctx, "biometric challenge rejected")
	}
	return ok
}
