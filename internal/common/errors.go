// Package common defines shared constants and sentinel errors used across
// the wallet's authentication and storage layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrStorage  = errors.New("secure storage failure")
	ErrNotFound = errors.New("not found")

	// Authentication errors.
	ErrHardwareUnavailable  = errors.New("biometric hardware unavailable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	// Precondition errors (caller-contract violations, propagated to callers).
	ErrPINRequired = errors.New("pin value required")

	// Network / provider errors.
	ErrNetwork      = errors.New("network error")
	ErrSignInFailed = errors.New("sign-in failed")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrNoRefreshToken = errors.New("no refresh token")
)
