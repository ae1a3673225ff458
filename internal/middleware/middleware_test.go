package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("tea"))
})

func TestSecurityHeadersBeforeWrite(t *testing.T) {
	for _, dev := range []bool{false, true} {
		rec := httptest.NewRecorder()
		Security(dev)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("dev=%v: X-Frame-Options missing", dev)
		}
		if got := rec.Header().Get("Strict-Transport-Security") != ""; got == dev {
			t.Errorf("dev=%v: HSTS present = %v", dev, got)
		}
	}
}

func TestSecurityKeepsHandlerValue(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
	})
	rec := httptest.NewRecorder()
	Security(false)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestForceHTTPS(t *testing.T) {
	cases := []struct {
		host, proto string
		redirect    bool
	}{
		{"campus.example", "", true},
		{"campus.example", "https", false},
		{"localhost:3000", "", false},
		{"127.0.0.1:3000", "", false},
		{"[::1]:3000", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/catalog?sort=room", nil)
		r.Host = tc.host
		if tc.proto != "" {
			r.Header.Set("X-Forwarded-Proto", tc.proto)
		}
		rec := httptest.NewRecorder()
		ForceHTTPS(ok).ServeHTTP(rec, r)

		if got := rec.Code == http.StatusPermanentRedirect; got != tc.redirect {
			t.Errorf("%s proto=%q: redirect = %v", tc.host, tc.proto, got)
		}
		if tc.redirect && rec.Header().Get("Location") != "https://campus.example/catalog?sort=room" {
			t.Errorf("location = %q", rec.Header().Get("Location"))
		}
	}
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLog(zap.New(core))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request id = %q", rec.Header().Get(RequestIDHeader))
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.well-known/security.txt", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/about" || fields["status"] != int64(http.StatusTeapot) || fields["bytes"] != int64(3) {
		t.Errorf("fields = %v", fields)
	}
}
