// Package csrf implements double-submit CSRF protection.
//
// Safe methods (GET/HEAD/OPTIONS) mint a token when none exists: an
// HTTP-only SameSite=Lax cookie plus the same value in a response header
// for page scripts to read. Unsafe methods must present the cookie and the
// X-CSRF-Token request header with byte-equal values or they are rejected
// with a fixed 403 body that never reveals which side was missing.
//
// A small exact-path exemption list covers routes like login, where no
// prior safe-method visit could have minted a token. The guard is scoped to
// a path prefix so static assets see no cookie churn.
package csrf
