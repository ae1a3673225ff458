// Package middleware holds small, composable HTTP wrappers.  Each has the
// plain net/http shape and is mounted with pipeline.Wrap.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ForceHTTPS issues a 308 to the HTTPS version of any plain-HTTP request,
// except for loopback hosts.  A TLS-terminating proxy is trusted through
// X-Forwarded-Proto.
func ForceHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") || isLoopback(r.Host) {
			next.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// isLoopback reports whether host (with or without port) is local.
func isLoopback(host string) bool {
	h := stripPort(host)
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(strings.Trim(h, "[]"))
	return ip != nil && ip.IsLoopback()
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}
