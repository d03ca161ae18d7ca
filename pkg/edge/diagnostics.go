package edge

import (
	"context"
	"net/http"
)

// WarningHeader marks responses from state-changing routes that no guard
// preset wrapped. Development aid only: it is never emitted in production
// and never affects pass/fail.
const WarningHeader = "X-Unguarded-Mutation"

type guardMarkerKey struct{}

type guardMarker struct {
	applied bool
}

// MarkGuarded records that a guard preset ran for this request. Called by
// the guard composer; a no-op when the diagnostics decorator is not active.
func MarkGuarded(r *http.Request) {
	if m, ok := r.Context().Value(guardMarkerKey{}).(*guardMarker); ok {
		m.applied = true
	}
}

// UnguardedMutationDiagnostics annotates unsafe-method responses whose
// handler never passed through a guard preset. The marker travels in the
// request context; the header is set optimistically and removed at write
// time when a guard did run.
func UnguardedMutationDiagnostics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		marker := &guardMarker{}
		ctx := context.WithValue(r.Context(), guardMarkerKey{}, marker)

		w.Header().Set(WarningHeader, "1")
		dw := &diagnosticWriter{ResponseWriter: w, marker: marker}
		next.ServeHTTP(dw, r.WithContext(ctx))
	})
}

// diagnosticWriter strips the warning header at write time when a guard
// preset marked the request.
type diagnosticWriter struct {
	http.ResponseWriter
	marker  *guardMarker
	written bool
}

func (w *diagnosticWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		if w.marker.applied {
			w.Header().Del(WarningHeader)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *diagnosticWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
