// Package ratelimit implements fixed-window request limiting with named
// presets and pluggable counter stores.
//
// # Overview
//
// A Limiter answers one question per request: has this key exceeded its
// window? Counters live in a Store: in-memory for single instances,
// Redis when the limit must hold across a fleet. The increment is atomic
// per key in both stores.
//
// # Presets
//
// Routes name a preset (api, auth, search, upload, resource) instead of
// carrying raw numbers. Unknown names fall back to the api preset with a
// logged warning; a misconfigured route is never left unprotected.
//
// # Failure policy
//
// Store failures follow the configured FailMode. The default, FailClosed,
// surfaces the failure so the request is denied with a generic 500. A
// broken defense that silently allows everything is worse than an outage.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(0), logger, metrics, ratelimit.Options{})
//	res, err := limiter.CheckPreset(ctx, clientKey, "auth")
//	ratelimit.SetHeaders(w, res)
//	if err != nil { /* 500 */ }
//	if !res.Allowed { /* 429 */ }
package ratelimit
