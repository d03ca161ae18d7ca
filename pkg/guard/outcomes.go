package guard

// Outcome classifies how the pipeline disposed of a request. All outcomes
// except OutcomeInternalError are expected, first-class results of normal
// operation; they map to fixed HTTP statuses and safe, generic bodies.
type Outcome string

const (
	OutcomeOK Outcome = "ok"

	// OutcomeRateLimited: the client key exceeded its window (429)
	OutcomeRateLimited Outcome = "rate_limited"

	// OutcomeCSRFInvalid: double-submit token mismatch (403)
	OutcomeCSRFInvalid Outcome = "csrf_invalid"

	// OutcomeUnauthenticated: no usable identity on a protected route (401)
	OutcomeUnauthenticated Outcome = "unauthenticated"

	// OutcomeTenantDenied: tenant resolved but the caller is not a member,
	// or the caller is entitled to no tenant here (403)
	OutcomeTenantDenied Outcome = "tenant_denied"

	// OutcomeTenantUnresolved: nothing to resolve against (404)
	OutcomeTenantUnresolved Outcome = "tenant_unresolved"

	// OutcomeValidationFailed: request shape rejected (400)
	OutcomeValidationFailed Outcome = "validation_failed"

	// OutcomeInternalError: a store or resolver failure; logged with full
	// detail server-side, surfaced as a bare 500 (500)
	OutcomeInternalError Outcome = "internal_error"
)
