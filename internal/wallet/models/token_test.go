package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairValid_BoundaryExactBufferIsInvalid(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	pair := &TokenPair{
		AccessToken: "at",
		ExpiresAt:   now.Add(ExpiryBuffer).UnixMilli(),
	}
	require.False(t, pair.Valid(now), "expiry exactly at now+buffer must be invalid")

	pair.ExpiresAt++
	require.True(t, pair.Valid(now), "one millisecond past the buffer must be valid")
}

func TestTokenPairValid_NilAndEmpty(t *testing.T) {
	now := time.Now()

	var pair *TokenPair
	assert.False(t, pair.Valid(now))

	assert.False(t, (&TokenPair{ExpiresAt: now.Add(time.Hour).UnixMilli()}).Valid(now),
		"pair without an access token is invalid")
}

func TestTokenPairValid_Expired(t *testing.T) {
	now := time.Now()
	pair := &TokenPair{AccessToken: "at", ExpiresAt: now.Add(-time.Minute).UnixMilli()}
	assert.False(t, pair.Valid(now))
}
