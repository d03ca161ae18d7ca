package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/palisadehq/palisade/pkg/identity"
)

// SessionCookieName carries the browser session token. Distinct from the
// CSRF cookie; both are HttpOnly, and scripts pick the CSRF token up from
// the response header instead.
const SessionCookieName = "palisade_session"

// Sessions is an in-memory session token store. Tokens are opaque UUIDs
// handed out at login and resolved back to identities by the providers.
type Sessions struct {
	mu      sync.RWMutex
	byToken map[string]*identity.Identity
}

// NewSessions creates an empty session store
func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]*identity.Identity)}
}

// Create registers a new session for the identity and returns its token
func (s *Sessions) Create(ident *identity.Identity) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.byToken[token] = ident
	s.mu.Unlock()
	return token
}

// Lookup resolves a token to its identity. Satisfies identity.TokenLookup.
func (s *Sessions) Lookup(token string) (*identity.Identity, error) {
	s.mu.RLock()
	ident, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return nil, identity.ErrNoIdentity
	}
	return ident, nil
}

// Revoke removes a session token
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

// APIProvider accepts Authorization bearer tokens first, then falls back to
// the session cookie.
func APIProvider(sessions *Sessions) identity.Provider {
	return identity.NewChainProvider(
		identity.NewTokenProvider(sessions.Lookup),
		identity.NewCookieProvider(SessionCookieName, sessions.Lookup),
	)
}

// BrowserProvider accepts only the session cookie. Browser-originated
// requests such as form posts cannot attach custom headers.
func BrowserProvider(sessions *Sessions) identity.Provider {
	return identity.NewCookieProvider(SessionCookieName, sessions.Lookup)
}
