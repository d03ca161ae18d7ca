package edge

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/palisadehq/palisade/pkg/csrf"
	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
)

func newTestFilter(t *testing.T, cfg FilterConfig, presets map[string]ratelimit.Config) *Filter {
	t.Helper()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(0), logger, metrics, ratelimit.Options{Presets: presets})
	guard := csrf.NewGuard(csrf.GuardConfig{}, logger, metrics)
	return NewFilter(limiter, guard, logger, metrics, cfg)
}

func TestFilter_PassesAllowedRequests(t *testing.T) {
	filter := newTestFilter(t, FilterConfig{}, nil)
	handler := filter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("RateLimit-Limit") == "" {
		t.Error("rate limit headers should be set on allowed responses")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be set on allowed responses")
	}
}

func TestFilter_RateLimitsBeforeCSRF(t *testing.T) {
	presets := map[string]ratelimit.Config{
		ratelimit.PresetAPI: {Max: 1, Window: time.Minute},
	}
	filter := newTestFilter(t, FilterConfig{}, presets)
	handler := filter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Use up the single slot
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	// A POST with no CSRF token: the 429 must win over the 403
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Too many requests, please try again later." {
		t.Errorf("error = %q", body["error"])
	}
	if w.Header().Get("RateLimit-Remaining") != "0" {
		t.Errorf("RateLimit-Remaining = %q, want 0", w.Header().Get("RateLimit-Remaining"))
	}
}

func TestFilter_SecurityHeadersOnRejections(t *testing.T) {
	presets := map[string]ratelimit.Config{
		ratelimit.PresetAPI: {Max: 0, Window: time.Minute},
	}
	filter := newTestFilter(t, FilterConfig{Production: true}, presets)
	handler := filter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers must be present on 429 responses")
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS must be present on production rejections")
	}
}

func TestFilter_CSRFRunsAfterRateLimit(t *testing.T) {
	filter := newTestFilter(t, FilterConfig{}, nil)
	handler := filter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/things", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Invalid CSRF token" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestFilter_ClientsAreKeyedSeparately(t *testing.T) {
	presets := map[string]ratelimit.Config{
		ratelimit.PresetAPI: {Max: 1, Window: time.Minute},
	}
	filter := newTestFilter(t, FilterConfig{}, presets)
	handler := filter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("first client status = %d, want 200", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200 (separate counter)", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("first client second request status = %d, want 429", w.Code)
	}
}
