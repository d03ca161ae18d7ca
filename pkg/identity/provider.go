package identity

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

// ErrNoIdentity is returned when a request carries no usable credential.
// Providers return it (never a nil, nil pair) so the guard composer can
// answer 401 without guessing.
var ErrNoIdentity = errors.New("identity: no authenticated identity")

// Provider extracts the authenticated identity from a request.
//
// Implementations must not mutate the request and must return ErrNoIdentity
// when the request simply lacks a credential; other errors indicate a
// provider failure and surface as 500.
type Provider interface {
	FromRequest(r *http.Request) (*Identity, error)
}

// TokenProvider resolves identities from an Authorization bearer token.
// The token-to-identity mapping is owned by the external auth system; this
// provider just consults it.
type TokenProvider struct {
	lookup TokenLookup
}

// TokenLookup maps a bearer token to an identity. Returns ErrNoIdentity for
// unknown tokens.
type TokenLookup func(token string) (*Identity, error)

// NewTokenProvider creates a provider backed by the given lookup
func NewTokenProvider(lookup TokenLookup) *TokenProvider {
	return &TokenProvider{lookup: lookup}
}

// FromRequest extracts and resolves the bearer token
func (p *TokenProvider) FromRequest(r *http.Request) (*Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrNoIdentity
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, ErrNoIdentity
	}

	return p.lookup(parts[1])
}

// CookieProvider resolves identities from a session cookie. Used by the
// browserAccessible preset, where the request (an <img> fetch, a download
// link) cannot carry custom headers.
type CookieProvider struct {
	cookieName string
	lookup     TokenLookup
}

// NewCookieProvider creates a provider reading the named session cookie
func NewCookieProvider(cookieName string, lookup TokenLookup) *CookieProvider {
	return &CookieProvider{cookieName: cookieName, lookup: lookup}
}

// FromRequest extracts and resolves the session cookie value
func (p *CookieProvider) FromRequest(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoIdentity
	}
	return p.lookup(cookie.Value)
}

// ChainProvider tries each provider in order, returning the first identity.
// Only ErrNoIdentity moves on to the next provider; real failures stop the
// chain immediately.
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider creates a provider chain
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// FromRequest tries each provider in order
func (p *ChainProvider) FromRequest(r *http.Request) (*Identity, error) {
	for _, provider := range p.providers {
		ident, err := provider.FromRequest(r)
		if err == nil {
			return ident, nil
		}
		if !errors.Is(err, ErrNoIdentity) {
			return nil, err
		}
	}
	return nil, ErrNoIdentity
}

// StaticLookup is a fixed token-to-identity table, used by tests and the
// reference server.
type StaticLookup struct {
	mu     sync.RWMutex
	tokens map[string]*Identity
}

// NewStaticLookup creates a lookup over a fixed token table
func NewStaticLookup(tokens map[string]*Identity) *StaticLookup {
	if tokens == nil {
		tokens = make(map[string]*Identity)
	}
	return &StaticLookup{tokens: tokens}
}

// Add registers a token for an identity
func (s *StaticLookup) Add(token string, ident *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = ident
}

// Lookup resolves a token; satisfies TokenLookup
func (s *StaticLookup) Lookup(token string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.tokens[token]
	if !ok {
		return nil, ErrNoIdentity
	}
	return ident, nil
}
