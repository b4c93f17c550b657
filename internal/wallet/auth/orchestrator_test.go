package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/federated"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakePIN struct {
	set      bool
	verifyOK bool
	createOK bool

	IsSetCalls  int
	VerifyCalls int
	LastVerify  string
}

func (f *fakePIN) Create(context.Context, string) bool { return f.createOK }

func (f *fakePIN) Verify(_ context.Context, pin string) bool {
	f.VerifyCalls++
	f.LastVerify = pin
	return f.verifyOK
}

func (f *fakePIN) IsSet(context.Context) bool {
	f.IsSetCalls++
	return f.set
}

type fakeBio struct {
	available bool
	authOK    bool

	AvailableCalls int
	AuthCalls      int
}

func (f *fakeBio) Available(context.Context) bool {
	f.AvailableCalls++
	return f.available
}

func (f *fakeBio) Authenticate(context.Context, string) bool {
	f.AuthCalls++
	return f.authOK
}

type fakeFed struct {
	result *federated.SignInResult
	err    error

	SignInCalls int
}

func (f *fakeFed) SignIn(context.Context) (*federated.SignInResult, error) {
	f.SignInCalls++
	return f.result, f.err
}

type fakeProfiles struct {
	profile *models.User

	LastStored *models.User
}

func (f *fakeProfiles) Profile(context.Context) *models.User { return f.profile }

func (f *fakeProfiles) StoreProfile(_ context.Context, user *models.User) bool {
	f.LastStored = user
	return true
}

func newOrchestrator(pin *fakePIN, bio *fakeBio, fed *fakeFed, profiles *fakeProfiles) *Orchestrator {
	return NewOrchestrator(pin, bio, fed, profiles, testLogger())
}

func TestPreferredMethod_TruthTable(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		pinSet    bool
		want      models.Method
	}{
		{"biometrics win", true, true, models.MethodBiometric},
		{"biometrics without pin", true, false, models.MethodBiometric},
		{"pin fallback", false, true, models.MethodPIN},
		{"federated last resort", false, false, models.MethodGoogle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pin := &fakePIN{set: tc.pinSet}
			bio := &fakeBio{available: tc.available}
			o := newOrchestrator(pin, bio, &fakeFed{}, &fakeProfiles{})

			require.Equal(t, tc.want, o.PreferredMethod(context.Background()))
		})
	}
}

func TestPreferredMethod_BiometricShortCircuits(t *testing.T) {
	pin := &fakePIN{set: true}
	bio := &fakeBio{available: true}
	o := newOrchestrator(pin, bio, &fakeFed{}, &fakeProfiles{})

	require.Equal(t, models.MethodBiometric, o.PreferredMethod(context.Background()))
	require.Zero(t, pin.IsSetCalls, "pin record must not be queried when biometrics are available")
}

func TestPreferredMethod_PINPathQueriesBiometricsFirst(t *testing.T) {
	pin := &fakePIN{set: true}
	bio := &fakeBio{available: false}
	o := newOrchestrator(pin, bio, &fakeFed{}, &fakeProfiles{})

	require.Equal(t, models.MethodPIN, o.PreferredMethod(context.Background()))
	require.Equal(t, 1, bio.AvailableCalls, "biometric check happens, just does not win")
	require.Equal(t, 1, pin.IsSetCalls)
}

func TestAuthenticate_BiometricResolvesCachedProfile(t *testing.T) {
	cached := &models.User{ID: "u1", Email: "u1@example.com"}
	o := newOrchestrator(&fakePIN{}, &fakeBio{authOK: true}, &fakeFed{}, &fakeProfiles{profile: cached})

	user, err := o.Authenticate(context.Background(), models.MethodBiometric, Credentials{})
	require.NoError(t, err)
	require.Equal(t, cached, user)
}

func TestAuthenticate_BiometricFailure(t *testing.T) {
	o := newOrchestrator(&fakePIN{}, &fakeBio{authOK: false}, &fakeFed{}, &fakeProfiles{})

	user, err := o.Authenticate(context.Background(), models.MethodBiometric, Credentials{})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuthenticate_PINRequiresValue(t *testing.T) {
	pin := &fakePIN{verifyOK: true}
	o := newOrchestrator(pin, &fakeBio{}, &fakeFed{}, &fakeProfiles{})

	user, err := o.Authenticate(context.Background(), models.MethodPIN, Credentials{})
	require.ErrorIs(t, err, common.ErrPINRequired)
	require.Nil(t, user)
	require.Zero(t, pin.VerifyCalls)
}

func TestAuthenticate_PINSuccessAndFailure(t *testing.T) {
	cached := &models.User{ID: "u1"}
	pin := &fakePIN{verifyOK: true}
	o := newOrchestrator(pin, &fakeBio{}, &fakeFed{}, &fakeProfiles{profile: cached})

	user, err := o.Authenticate(context.Background(), models.MethodPIN, Credentials{PIN: "1234"})
	require.NoError(t, err)
	require.Equal(t, cached, user)
	require.Equal(t, "1234", pin.LastVerify)

	pin.verifyOK = false
	user, err = o.Authenticate(context.Background(), models.MethodPIN, Credentials{PIN: "9999"})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuthenticate_GoogleStoresProfileWithoutPhoto(t *testing.T) {
	signedIn := &models.User{ID: "sub-1", Name: "Alice", Email: "alice@example.com"}
	fed := &fakeFed{result: &federated.SignInResult{
		User:   signedIn,
		Tokens: &models.TokenPair{AccessToken: "at", ExpiresAt: 99},
	}}
	profiles := &fakeProfiles{}
	o := newOrchestrator(&fakePIN{}, &fakeBio{}, fed, profiles)

	user, err := o.Authenticate(context.Background(), models.MethodGoogle, Credentials{})
	require.NoError(t, err)
	require.Equal(t, signedIn, user)
	require.Equal(t, signedIn, profiles.LastStored,
		"cache receives exactly id/name/email; the profile type carries nothing else")
}

func TestAuthenticate_GoogleFailureConvertsToNil(t *testing.T) {
	fed := &fakeFed{err: errors.New("provider denied")}
	o := newOrchestrator(&fakePIN{}, &fakeBio{}, fed, &fakeProfiles{})

	user, err := o.Authenticate(context.Background(), models.MethodGoogle, Credentials{})
	require.NoError(t, err, "authenticator failures never propagate")
	require.Nil(t, user)
}

func TestAuthenticate_UnknownMethod(t *testing.T) {
	o := newOrchestrator(&fakePIN{}, &fakeBio{}, &fakeFed{}, &fakeProfiles{})

	user, err := o.Authenticate(context.Background(), models.Method("carrier-pigeon"), Credentials{})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestPassthroughs(t *testing.T) {
	pin := &fakePIN{set: true, createOK: true}
	bio := &fakeBio{available: true}
	o := newOrchestrator(pin, bio, &fakeFed{}, &fakeProfiles{})
	ctx := context.Background()

	require.True(t, o.SetupPIN(ctx, "1234"))
	require.True(t, o.PINSet(ctx))
	require.True(t, o.BiometricAvailable(ctx))
}
