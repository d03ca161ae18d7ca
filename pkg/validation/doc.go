// Package validation provides request shape validation for guarded routes.
//
// A Schema declares rules for query parameters and top-level JSON body
// fields, scoped to HTTP methods. Validation produces a field-level error
// list; messages describe the expectation and never echo submitted values,
// which may contain sensitive data.
//
//	schema := &validation.Schema{
//		Methods: []string{http.MethodPost},
//		Body: validation.FieldRules{
//			"name":       {validation.Required(), validation.String(120)},
//			"project_id": {validation.Required(), validation.UUID()},
//		},
//	}
package validation
