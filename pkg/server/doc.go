// Package server is the reference API surface for the pipeline: a route
// table where every endpoint is wrapped in a guard preset, a session store
// feeding the identity providers, and demo data so the binary runs with no
// external services.
//
// The handlers here are intentionally thin. The interesting behavior is the
// wrapping: which preset guards which route, which resolver computes the
// tenant, and which schemas validate the request shape.
package server
