// Package identity defines the authenticated identity the pipeline consumes
// and the Provider abstraction that extracts it from a request.
//
// This is deliberately not an authentication system: no credentials are
// issued or verified here. A Provider consults an external lookup (session
// store, token service) and yields {UserID, TenantMemberships}.
//
// Providers:
//
//	TokenProvider:  Authorization: Bearer <token>
//	CookieProvider: session cookie, for requests that cannot carry headers
//	ChainProvider:  first-match composition of the above
package identity
