package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// FieldError is one failed field in a validation pass
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldRules maps field names to their rules
type FieldRules map[string][]Rule

// Schema validates the shape of a request: query parameters and top-level
// JSON body fields, scoped to specific HTTP methods.
type Schema struct {
	// Methods lists the HTTP methods this schema applies to; empty applies
	// to every method.
	Methods []string
	// Query rules run against URL query parameters
	Query FieldRules
	// Body rules run against top-level fields of a JSON object body
	Body FieldRules
}

// AppliesTo reports whether the schema covers the given method
func (s *Schema) AppliesTo(method string) bool {
	if len(s.Methods) == 0 {
		return true
	}
	for _, m := range s.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Validate checks the request against the schema. Field errors are returned
// sorted by field name for stable responses. A non-nil error means the
// request could not be examined at all (unreadable body) and is itself a
// shape failure, reported via the returned field errors.
//
// The body is restored after reading so the handler can decode it again.
func (s *Schema) Validate(r *http.Request) []FieldError {
	var errs []FieldError

	for field, rules := range s.Query {
		values, present := r.URL.Query()[field]
		var value interface{}
		if present && len(values) > 0 {
			value = values[0]
		} else {
			value = ""
			present = false
		}
		for _, rule := range rules {
			if msg := rule(value, present); msg != "" {
				errs = append(errs, FieldError{Field: "query." + field, Message: msg})
				break
			}
		}
	}

	if len(s.Body) > 0 {
		bodyFields, err := s.readBody(r)
		if err != nil {
			errs = append(errs, FieldError{Field: "body", Message: "must be a JSON object"})
		} else {
			for field, rules := range s.Body {
				value, present := bodyFields[field]
				for _, rule := range rules {
					if msg := rule(value, present); msg != "" {
						errs = append(errs, FieldError{Field: "body." + field, Message: msg})
						break
					}
				}
			}
		}
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// readBody decodes the JSON object body and restores r.Body for the handler
func (s *Schema) readBody(r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("empty body")
	}

	raw, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return fields, nil
}
