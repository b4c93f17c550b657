// Package session owns the wallet's authentication session state. The Store
// is the single writer: every transition goes through a mutex plus a
// generation counter, so a completion belonging to a superseded login or
// logout cannot clobber newer state.
package session

import (
	"context"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/auth"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/directory"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
)

// Orchestrator is the authentication surface the session layer drives.
type Orchestrator interface {
	PreferredMethod(ctx context.Context) models.Method
	Authenticate(ctx context.Context, method models.Method, cred auth.Credentials) (*models.User, error)
	SetupPIN(ctx context.Context, pin string) bool
	PINSet(ctx context.Context) bool
	BiometricAvailable(ctx context.Context) bool
}

// Federated exposes the provider-session operations the store needs for
// logout and status checks.
type Federated interface {
	SignOut(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
}

// ProfileCache is the locally cached user profile.
type ProfileCache interface {
	Profile(ctx context.Context) *models.User
	StoreProfile(ctx context.Context, user *models.User) bool
	ClearProfile(ctx context.Context) bool
}

// DirectoryAuth is the email/password credential directory.
type DirectoryAuth interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, data directory.RegisterData) (*models.User, error)
}

// FanOut coordinates the per-user domain stores around session transitions.
type FanOut interface {
	LoadAll(ctx context.Context, userID string)
	SaveAll(ctx context.Context, userID string)
	ResetAll()
}

// Store is the session state machine.
type Store struct {
	orch     Orchestrator
	fed      Federated
	profiles ProfileCache
	dir      DirectoryAuth
	data     FanOut
	log      logging.Logger

	mu      sync.Mutex
	gen     uint64
	session models.Session
	subs    map[int]func(models.Session)
	nextSub int
}

func NewStore(orch Orchestrator, fed Federated, profiles ProfileCache, dir DirectoryAuth, data FanOut, log logging.Logger) *Store {
	return &Store{
		orch:     orch,
		fed:      fed,
		profiles: profiles,
		dir:      dir,
		data:     data,
		log:      log.With("component", "session"),
		subs:     make(map[int]func(models.Session)),
	}
}

// Current returns a snapshot of the session state.
func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers fn for session snapshots and calls it once with the
// current state. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	cur := s.session
	s.mu.Unlock()

	fn(cur)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// begin starts a new transition: it invalidates any in-flight one, flips
// Loading on, and returns the new generation plus a snapshot of the state
// the transition started from.
func (s *Store) begin() (uint64, models.Session) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	prev := s.session
	s.session.Loading = true
	snapshot := s.session
	fns := s.subscribers()
	s.mu.Unlock()

	notify(fns, snapshot)
	return gen, prev
}

// commit applies mutate and clears Loading, but only if the transition has
// not been superseded by a newer begin.
func (s *Store) commit(ctx context.Context, gen uint64, mutate func(*models.Session)) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug(ctx, "dropping stale session transition", "gen", gen)
		return false
	}
	mutate(&s.session)
	s.session.Loading = false
	snapshot := s.session
	fns := s.subscribers()
	s.mu.Unlock()

	notify(fns, snapshot)
	return true
}

func (s *Store) subscribers() []func(models.Session) {
	fns := make([]func(models.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(models.Session), snapshot models.Session) {
	for _, fn := range fns {
		fn(snapshot)
	}
}

// Login runs the method-resolution flow: the preferred method first, then,
// when biometrics fail and a PIN was supplied, exactly one PIN attempt. The
// recorded preferred method stays the originally resolved one even when the
// fallback produced the user.
func (s *Store) Login(ctx context.Context, pin string) bool {
	gen, _ := s.begin()

	method := s.orch.PreferredMethod(ctx)
	user, err := s.orch.Authenticate(ctx, method, auth.Credentials{PIN: pin})
	if err != nil {
		s.log.Warn(ctx, "authentication error", "method", method, "err", err)
	}
	if user == nil && method == models.MethodBiometric && pin != "" {
		s.log.Info(ctx, "biometric failed, trying pin fallback")
		user, err = s.orch.Authenticate(ctx, models.MethodPIN, auth.Credentials{PIN: pin})
		if err != nil {
			s.log.Warn(ctx, "pin fallback error", "err", err)
		}
	}
	if user == nil {
		s.commit(ctx, gen, func(sess *models.Session) { *sess = models.Session{} })
		return false
	}

	s.data.LoadAll(ctx, user.ID)
	return s.commit(ctx, gen, func(sess *models.Session) {
		sess.User = user
		sess.Authenticated = true
		sess.PreferredMethod = method
	})
}

// Logout saves the user's data, ends the federated session, clears the
// cached profile, and resets the domain stores. Every step is best effort;
// the terminal state is always unauthenticated.
func (s *Store) Logout(ctx context.Context) {
	gen, prev := s.begin()

	if prev.User != nil {
		s.data.SaveAll(ctx, prev.User.ID)
	}
	if err := s.fed.SignOut(ctx); err != nil {
		s.log.Warn(ctx, "federated sign-out", "err", err)
	}
	if !s.profiles.ClearProfile(ctx) {
		s.log.Warn(ctx, "profile cache clear failed")
	}
	s.data.ResetAll()

	s.commit(ctx, gen, func(sess *models.Session) { *sess = models.Session{} })
}

// CheckAuthStatus restores the session on startup: a live federated session
// wins, a cached profile is the offline fallback, and with neither the
// stores are reset and the session stays unauthenticated.
func (s *Store) CheckAuthStatus(ctx context.Context) {
	gen, _ := s.begin()

	if s.fed.IsAuthenticated(ctx) {
		if user := s.fed.CurrentUser(ctx); user != nil {
			s.restore(ctx, gen, user)
			return
		}
	}
	if user := s.profiles.Profile(ctx); user != nil {
		s.log.Info(ctx, "restoring session from cached profile")
		s.restore(ctx, gen, user)
		return
	}

	s.data.ResetAll()
	s.commit(ctx, gen, func(sess *models.Session) { *sess = models.Session{} })
}

func (s *Store) restore(ctx context.Context, gen uint64, user *models.User) {
	method := s.orch.PreferredMethod(ctx)
	s.data.LoadAll(ctx, user.ID)
	s.commit(ctx, gen, func(sess *models.Session) {
		sess.User = user
		sess.Authenticated = true
		sess.PreferredMethod = method
	})
}

// LoginWithEmailPassword authenticates against the credential directory.
// Unlike Login it reports invalid credentials to the caller.
func (s *Store) LoginWithEmailPassword(ctx context.Context, email, password string) error {
	gen, _ := s.begin()

	user, err := s.dir.Authenticate(ctx, email, password)
	if err != nil {
		s.commit(ctx, gen, func(sess *models.Session) { *sess = models.Session{} })
		return err
	}

	if !s.profiles.StoreProfile(ctx, user) {
		s.log.Warn(ctx, "profile cache store failed")
	}
	s.restore(ctx, gen, user)
	return nil
}

// RegisterUser creates a directory account and logs it in.
func (s *Store) RegisterUser(ctx context.Context, data directory.RegisterData) error {
	gen, _ := s.begin()

	user, err := s.dir.Register(ctx, data)
	if err != nil {
		s.commit(ctx, gen, func(sess *models.Session) { *sess = models.Session{} })
		return err
	}

	if !s.profiles.StoreProfile(ctx, user) {
		s.log.Warn(ctx, "profile cache store failed")
	}
	s.restore(ctx, gen, user)
	return nil
}

// SetupPIN enrolls a local PIN.
func (s *Store) SetupPIN(ctx context.Context, pin string) bool {
	return s.orch.SetupPIN(ctx, pin)
}

// PINSet reports whether a local PIN is enrolled.
func (s *Store) PINSet(ctx context.Context) bool {
	return s.orch.PINSet(ctx)
}

// BiometricAvailable reports whether biometric sign-in is usable.
func (s *Store) BiometricAvailable(ctx context.Context) bool {
	return s.orch.BiometricAvailable(ctx)
}
