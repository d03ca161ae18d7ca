package httputil

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// PathVar extracts a string path parameter registered on the route
func PathVar(r *http.Request, key string) (string, error) {
	vars := mux.Vars(r)
	str := vars[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// UnknownClientKey is the rate limit key used when the client address
// cannot be determined at all.
const UnknownClientKey = "unknown"

// ClientIP derives the client's network address for rate limit keying.
//
// X-Forwarded-For is only honored when the direct peer is one of the
// configured trusted proxies; the header is client-controlled otherwise and
// must never be the sole key source. With no trusted proxies configured, the
// transport-level peer address is always used.
func ClientIP(r *http.Request, trustedProxies []string) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (some test servers); use as-is.
		peer = r.RemoteAddr
	}
	if peer == "" {
		return UnknownClientKey
	}

	if len(trustedProxies) > 0 && isTrustedProxy(peer, trustedProxies) {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			// First entry is the original client; validate it parses as an IP
			// before trusting it.
			first := strings.TrimSpace(strings.Split(fwd, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip.String()
			}
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			if ip := net.ParseIP(strings.TrimSpace(realIP)); ip != nil {
				return ip.String()
			}
		}
	}

	return peer
}

func isTrustedProxy(peer string, trusted []string) bool {
	peerIP := net.ParseIP(peer)
	for _, t := range trusted {
		if t == peer {
			return true
		}
		if _, cidr, err := net.ParseCIDR(t); err == nil && peerIP != nil && cidr.Contains(peerIP) {
			return true
		}
	}
	return false
}
