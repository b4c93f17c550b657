package models

import "time"

// ExpiryBuffer is the safety margin against using a near-expiry access
// token: a pair whose expiry is less than this far away counts as invalid.
const ExpiryBuffer = 5 * time.Minute

// TokenPair holds the provider-issued access/refresh token pair.
// ExpiresAt is epoch milliseconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Valid reports whether the access token is usable at the given instant.
// The expiry must lie strictly beyond now plus the buffer.
func (t *TokenPair) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt > now.Add(ExpiryBuffer).UnixMilli()
}
