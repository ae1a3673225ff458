// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years), production only
//   • Content-Security-Policy   –  self-only policy
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; once a handler writes, the
//   header map is frozen.  A handler may still replace any of them.
// • In development the CSP admits the inline live-reload script and its
//   WebSocket.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

const hsts = "max-age=63072000; includeSubDomains"

const (
	cspProd = "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
		"base-uri 'self'; frame-ancestors 'none'"
	cspDev  = "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
		"base-uri 'self'; frame-ancestors 'none'; " +
		"script-src 'self' 'unsafe-inline'; connect-src 'self' ws:"
)

// Security returns the header middleware.  dev relaxes the CSP and drops
// HSTS.
func Security(dev bool) func(http.Handler) http.Handler {
	csp := cspProd
	if dev {
		csp = cspDev
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setDefault(h, "Content-Security-Policy", csp)
			setDefault(h, "X-Frame-Options", "DENY")
			setDefault(h, "X-Content-Type-Options", "nosniff")
			setDefault(h, "Referrer-Policy", "strict-origin-when-cross-origin")
			setDefault(h, "Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			if !dev {
				setDefault(h, "Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setDefault(h http.Header, key, val string) {
	if h.Get(key) == "" {
		h.Set(key, val)
	}
}
