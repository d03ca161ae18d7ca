package csrf

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/palisadehq/palisade/pkg/observability"
)

func newTestGuard(t *testing.T, cfg GuardConfig) *Guard {
	t.Helper()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewGuard(cfg, logger, metrics)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func findCookie(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGuard_MintsTokenOnSafeMethod(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{})
	handler := guard.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/page", nil))

	res := w.Result()
	cookie := findCookie(t, res, DefaultCookieName)
	if cookie == nil {
		t.Fatal("expected CSRF cookie on GET")
	}
	if !cookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("cookie should be SameSite=Lax")
	}
	if cookie.Path != "/" {
		t.Errorf("cookie Path = %q, want /", cookie.Path)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
	}
	if cookie.Secure {
		t.Error("cookie should not be Secure outside production")
	}
	if header := res.Header.Get(DefaultHeaderName); header != cookie.Value {
		t.Errorf("response header token %q does not match cookie %q", header, cookie.Value)
	}
	if len(cookie.Value) != 64 {
		t.Errorf("token length = %d hex chars, want 64", len(cookie.Value))
	}
}

func TestGuard_SecureCookieInProduction(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{Secure: true})
	handler := guard.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookie := findCookie(t, w.Result(), DefaultCookieName)
	if cookie == nil {
		t.Fatal("expected CSRF cookie")
	}
	if !cookie.Secure {
		t.Error("cookie should be Secure in production")
	}
}

func TestGuard_ReEchoesExistingToken(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{})
	handler := guard.Middleware(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "existing-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	res := w.Result()
	if c := findCookie(t, res, DefaultCookieName); c != nil {
		t.Error("should not re-set the cookie when one exists")
	}
	if header := res.Header.Get(DefaultHeaderName); header != "existing-token" {
		t.Errorf("header = %q, want existing-token", header)
	}
}

func TestGuard_NoMintOnUnsafeMethod(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{})
	handler := guard.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if c := findCookie(t, w.Result(), DefaultCookieName); c != nil {
		t.Error("unsafe method must not mint a token")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGuard_RoundTrip(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{})
	handler := guard.Middleware(okHandler())

	// Mint via GET
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := findCookie(t, w.Result(), DefaultCookieName)
	if cookie == nil {
		t.Fatal("expected minted cookie")
	}

	// Replay both halves on a POST
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: cookie.Value})
	r.Header.Set(DefaultHeaderName, cookie.Value)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGuard_RejectsUnsafeRequests(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{})
	handler := guard.Middleware(okHandler())

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no tokens", func(*http.Request) {}},
		{"cookie only", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "tok"})
		}},
		{"header only", func(r *http.Request) {
			r.Header.Set(DefaultHeaderName, "tok")
		}},
		{"mismatch", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "tok-a"})
			r.Header.Set(DefaultHeaderName, "tok-b")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
				r := httptest.NewRequest(method, "/api/things", nil)
				tt.setup(r)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, r)

				if w.Code != http.StatusForbidden {
					t.Errorf("%s: status = %d, want 403", method, w.Code)
				}
				var body map[string]string
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("%s: invalid JSON body: %v", method, err)
				}
				if body["error"] != "Invalid CSRF token" {
					t.Errorf("%s: error = %q, want %q", method, body["error"], "Invalid CSRF token")
				}
			}
		})
	}
}

func TestGuard_ExemptPath(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{ExemptPaths: []string{"/api/auth/login"}})
	handler := guard.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("exempt path status = %d, want 200", w.Code)
	}

	// Exemption is exact, not a prefix
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login/other", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("non-exempt path status = %d, want 403", w.Code)
	}
}

func TestGuard_PathPrefixScoping(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{PathPrefix: "/api"})
	handler := guard.Middleware(okHandler())

	// Outside the prefix: no validation, no cookie churn
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/static/upload", nil))
	if w.Code != http.StatusOK {
		t.Errorf("outside prefix status = %d, want 200", w.Code)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/page", nil))
	if c := findCookie(t, w.Result(), DefaultCookieName); c != nil {
		t.Error("no cookie should be minted outside the prefix")
	}

	// Inside the prefix: guarded
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/things", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("inside prefix status = %d, want 403", w.Code)
	}
}

func TestGuard_CustomNames(t *testing.T) {
	guard := newTestGuard(t, GuardConfig{CookieName: "ct", HeaderName: "X-CT"})
	handler := guard.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := findCookie(t, w.Result(), "ct")
	if cookie == nil {
		t.Fatal("expected cookie under custom name")
	}

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: "ct", Value: cookie.Value})
	r.Header.Set("X-CT", cookie.Value)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMintTokenUniqueness(t *testing.T) {
	a, err := mintToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := mintToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("two minted tokens should differ")
	}
}
