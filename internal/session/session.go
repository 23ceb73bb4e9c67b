// Package session holds the process-wide answer to "who is logged in".
// Screens depend on the Store through its constructor-injected gateway, not
// on ambient globals; the lifecycle is Init at startup, then Login, Logout
// and Refresh driven by the UI.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/credstore"
)

// Gateway defines the remote operations the store needs.
// Satisfied by *apiclient.Client; narrow interface for testability.
type Gateway interface {
	VerifyOTP(ctx context.Context, phone, code, fullName string) (*api.AuthResponse, error)
	CurrentUser(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
}

// Store is the session state container. At most one identity is current at a
// time. Concurrent in-flight calls are not fenced: the last completed result
// wins, so a slow Refresh resolving after a Logout can resurrect the identity
// in memory (never in the credential file, which Logout always clears).
type Store struct {
	gw    Gateway
	creds *credstore.Store
	log   *logrus.Logger

	mu      sync.Mutex
	user    *api.User
	loading bool
}

// New creates a store in the loading state. Call Init to restore any
// persisted session before rendering protected screens.
func New(gw Gateway, creds *credstore.Store, log *logrus.Logger) *Store {
	return &Store{gw: gw, creds: creds, log: log, loading: true}
}

// Init restores a persisted session, if any. A stored identity is treated as
// current optimistically, then revalidated against the server; on a failed
// revalidation the store ends anonymous with storage cleared. Always ends the
// loading state.
func (s *Store) Init(ctx context.Context) {
	defer s.setLoading(false)

	stored, ok, err := s.creds.Load()
	if err != nil {
		s.log.WithError(err).Warn("failed to read persisted session")
		return
	}
	if !ok {
		return
	}

	s.setUser(&stored.User)

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Info("persisted session revalidation failed")
		s.clearLocal()
		return
	}
	s.setUser(user)
}

// Login exchanges phone + code for a session. On failure the error is the
// gateway's normalized message and the current state is unchanged; use
// apiclient.IsNameRequired to detect the first-registration signal and branch
// to the name-completion step.
func (s *Store) Login(ctx context.Context, phone, code, fullName string) error {
	resp, err := s.gw.VerifyOTP(ctx, phone, code, fullName)
	if err != nil {
		return err
	}
	s.setUser(&resp.User)
	return nil
}

// Logout ends the session. The remote call is best-effort; local state and
// persisted storage are always cleared, so Logout never fails observably.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gw.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("remote logout failed")
	}
	s.clearLocal()
}

// Refresh resyncs the current identity from the server, replacing it in
// place. Failures are logged, never surfaced.
func (s *Store) Refresh(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Warn("identity refresh failed")
		return
	}
	s.setUser(user)
}

// Invalidate drops the in-memory identity. Wired as the gateway's
// unauthorized callback: the gateway has already erased persisted storage by
// the time this runs.
func (s *Store) Invalidate() {
	s.setUser(nil)
}

// Current returns the current identity, if any.
func (s *Store) Current() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether an identity is current.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Loading reports whether startup restoration is still in flight. Protected
// screens should not render until this is false.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) clearLocal() {
	if err := s.creds.Clear(); err != nil {
		s.log.WithError(err).Warn("failed to clear persisted session")
	}
	s.setUser(nil)
}

func (s *Store) setUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
