// internal/requestinfo/collect.go
//
// Collect builds a *RequestInfo for one request.
//
/*
Context
--------
The visitor stage calls Collect early in the global chain.  For every
request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the left-most client IP from X-Forwarded-For or
     X-Real-IP, falling back to `r.RemoteAddr`.
  3. Performs a GeoLite2 lookup when a database is configured.

When the log level is debug, each call logs the highlights.

Notes
-----
  • All look-ups are read-only, so one Resolver serves every request.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Collect parses UA and geo data for r.
func (res *Resolver) Collect(r *http.Request) *RequestInfo {
	ip := clientIP(r)

	info := &RequestInfo{
		UA:        res.lookupUA(r.UserAgent(), r.Header.Get("Accept-Language")),
		Geo:       res.lookupGeo(ip),
		URL:       r.URL,
		Timestamp: time.Now().UTC(),
	}

	zap.S().Debugw("request info",
		"ip", info.Geo.IP,
		"country", info.Geo.CountryISO,
		"browser", info.UA.Browser,
		"device", info.UA.Device,
		"bot", info.UA.IsBot,
		"path", r.URL.Path,
	)
	return info
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most parseable address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
