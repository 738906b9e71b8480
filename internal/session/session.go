// Package session holds the signed-in state of one client: the bearer token
// and the current user.
//
// A Session is passed explicitly through an environment; there is no
// process-wide current user.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/louisbranch/backer.space/internal/api"
	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
)

// Store persists the signed-in envelope between runs.
type Store interface {
	Load(ctx context.Context) (api.AccessTokenEnvelope, bool, error)
	Save(ctx context.Context, envelope api.AccessTokenEnvelope) error
	Clear(ctx context.Context) error
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	token    string
	user     api.User
	loggedIn bool
}

// New returns a signed-out Session.
func New() *Session {
	return &Session{}
}

// Login replaces the session with envelope. The token is kept opaque.
func (s *Session) Login(envelope api.AccessTokenEnvelope) error {
	token := strings.TrimSpace(envelope.AccessToken)
	if token == "" {
		return apperrors.E(apperrors.KindInvalidInput, "access token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = envelope.User
	s.loggedIn = true
	return nil
}

// Logout clears the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = api.User{}
	s.loggedIn = false
}

// CurrentUser returns the signed-in user, if any.
func (s *Session) CurrentUser() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.loggedIn
}

// AccessToken returns the bearer token, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsLoggedIn reports whether a user is signed in.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// UpdateCurrentUser swaps in a fresher copy of the signed-in user. It is a
// no-op when signed out or when user is a different account.
func (s *Session) UpdateCurrentUser(user api.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.user.ID != user.ID {
		return false
	}
	s.user = user
	return true
}

// Envelope returns the signed-in envelope.
func (s *Session) Envelope() (api.AccessTokenEnvelope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return api.AccessTokenEnvelope{}, false
	}
	return api.AccessTokenEnvelope{AccessToken: s.token, User: s.user}, true
}

// Restore returns a Session loaded from store, or a signed-out one when the
// store is empty. A nil store yields a signed-out Session.
func Restore(ctx context.Context, store Store) (*Session, error) {
	s := New()
	if store == nil {
		return s, nil
	}
	envelope, ok, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}
	if err := s.Login(envelope); err != nil {
		return nil, err
	}
	return s, nil
}

// Persist saves the signed-in envelope to store, or clears it when signed out.
func (s *Session) Persist(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	envelope, ok := s.Envelope()
	if !ok {
		return store.Clear(ctx)
	}
	return store.Save(ctx, envelope)
}
