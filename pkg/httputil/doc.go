// Package httputil provides shared HTTP plumbing for the pipeline: JSON
// response helpers with the fixed client-visible error bodies, request
// parsing, client address derivation, and baseline middleware (request ID,
// logging, recovery, body limits).
//
// The fixed messages (MsgTooManyRequests, MsgInvalidCSRF, ...) are part of
// the HTTP contract; handlers and guards must use these helpers rather than
// formatting their own rejection bodies.
package httputil
