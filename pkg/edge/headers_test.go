package edge

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestApplySecurityHeaders(t *testing.T) {
	h := http.Header{}
	ApplySecurityHeaders(h, false)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
	}
	for name, value := range want {
		if got := h.Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set outside production")
	}
}

func TestApplySecurityHeaders_HSTSInProduction(t *testing.T) {
	h := http.Header{}
	ApplySecurityHeaders(h, true)

	if got := h.Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}

func TestApplySecurityHeaders_Deterministic(t *testing.T) {
	a, b := http.Header{}, http.Header{}
	ApplySecurityHeaders(a, true)
	ApplySecurityHeaders(b, true)

	for name := range a {
		if a.Get(name) != b.Get(name) {
			t.Errorf("%s differs between calls", name)
		}
	}
	if len(a) != len(b) {
		t.Error("header sets differ between calls")
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware(false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("middleware should apply security headers")
	}
}
